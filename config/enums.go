package config

// Specification of the input format, for when automatic detection by
// extension and content is not wanted.
// ENUM(auto, manuscript, markdown)
type InputFmt int
