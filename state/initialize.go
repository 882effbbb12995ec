package state

import (
	"time"

	"msc/typescript"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:    time.Now(),
		Numerals: typescript.DefaultRomanNumerals(),
	}
}
