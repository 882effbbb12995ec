package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"msc/archive"
	"msc/config"
	"msc/convert/ps"
	"msc/manuscript"
	"msc/state"
	"msc/text"
	"msc/typescript"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("typeset")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.From, err = config.ParseInputFmt(cmd.String("from"))
	if err != nil {
		log.Warn("Unknown input format requested, switching to automatic detection", zap.Error(err))
		env.From = config.InputFmtAuto
	}

	if env.Cfg.Document.RomanNumeralsPath != "" {
		if env.Numerals, err = typescript.LoadRomanNumerals(env.Cfg.Document.RomanNumeralsPath); err != nil {
			return fmt.Errorf("unable to read roman numerals from %q: %w", env.Cfg.Document.RomanNumeralsPath, err)
		}
	}

	if env.Cfg.Document.ProloguePath != "" {
		if env.Prologue, err = os.ReadFile(env.Cfg.Document.ProloguePath); err != nil {
			return fmt.Errorf("unable to read prologue from %q: %w", env.Cfg.Document.ProloguePath, err)
		}
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("from", env.From))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core typesetting logic independently of CLI framework.
// It determines the input type (directory, archive, or single file) and
// processes accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return errors.New("unable to process directory")
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		archived, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if archived {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		format, enc, err := isBookFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if format != formatUnknown && len(tail) == 0 {
			// we have manuscript, it cannot have tail
			// encoding will be handled properly by processBook
			if file, err := os.Open(head); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			} else {
				defer file.Close()
				if err := processBook(ctx, selectReader(file, enc), filepath.Base(head), dst, format, log); err != nil {
					log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
				}
			}
			break
		}
		return fmt.Errorf("input was not recognized as manuscript (%s)", head)

	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding manuscript files and processes them.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		archived, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if archived {
			if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		format, enc, err := isBookFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if format == formatUnknown {
			log.Debug("Skipping file, not recognized as manuscript or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processBook(ctx, selectReader(file, enc), src, dst, format, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive walks all files inside archive, finds manuscript files under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	err = archive.Walk(path, pathIn, func(archive string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		format, enc, err := isBookInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", archive), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if format == formatUnknown {
			log.Debug("Skipping file, not recognized as manuscript", zap.String("archive", archive), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		cp := state.EnvFromContext(ctx).CodePage

		pathInArchive := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := processBook(ctx, selectReader(r, enc), filepath.Join(pathOut, pathInArchive), dst, format, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
	return err
}

// processBook typesets a single manuscript file. "src" is part of the source
// path (always including file name) relative to the original path. When actual
// file was specified it will be just base file name without a path. When
// looking inside archive or directory it will be relative path inside archive
// or directory (including base file name). "dst" is the destination directory
// where the typeset file should be written.
func processBook(ctx context.Context, r io.Reader, src string, dst string, format srcFormat, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	// requested format overrides detection
	switch env.From {
	case config.InputFmtManuscript:
		format = formatManuscript
	case config.InputFmtMarkdown:
		format = formatMarkdown
	}

	var refID, outputName string

	log.Info("Typesetting starting", zap.String("from", src))
	defer func(start time.Time) {
		// NOTE: if multiple manuscripts are being processed we do not want a
		// single bad input to stop the run.
		if r := recover(); r != nil {
			log.Error("Typesetting ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("typesetting panic: %v", r)
		} else {
			log.Info("Typesetting completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("ref_id", refID))
		}
	}(time.Now())

	c, err := prepareContent(ctx, r, src, format, log)
	if err != nil {
		return fmt.Errorf("unable to parse source (%s): %w", src, err)
	}

	refID = c.refID

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(c, src, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	ts := typeset(c.Manuscript(), env.Numerals)

	if err := ps.Generate(ctx, ts, outputName, env.Prologue, log); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}

	// Store typesetting result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", refID, filepath.Ext(outputName)), outputName)
	}

	return nil
}

// typeset formats the manuscript tree into blocks and flows them onto
// pages. Missing title or author fall back to placeholders so the slug
// line is never empty.
func typeset(ms *manuscript.Manuscript, numerals *typescript.RomanNumerals) *typescript.Typescript {
	if numerals == nil {
		numerals = typescript.DefaultRomanNumerals()
	}
	blocks := formatBlocks(ms, numerals)

	comp := typescript.NewCompositor(ms.FirstPage, ms.HasStructure)
	comp.Run(blocks)

	ts := &typescript.Typescript{
		Contact:      comp.Contact,
		WordCount:    ms.WordCount,
		HasStructure: ms.HasStructure,
		Pages:        comp.Pages,
	}

	if seg, ok := shortTitle(ms); ok {
		ts.ShortTitle = seg
	} else {
		ts.ShortTitle = text.Segment{Text: "Working Title", PS: "(WORKING TITLE) show "}
	}
	if seg, ok := shortAuthor(ms); ok {
		ts.ShortAuthor = seg
	} else {
		ts.ShortAuthor = text.NewSegment("ANONYMOUS")
	}
	return ts
}
