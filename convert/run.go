package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"wmlconv/archive"
	"wmlconv/common"
	"wmlconv/config"
	"wmlconv/convert/tohtml"
	"wmlconv/convert/towml"
	"wmlconv/opc"
	"wmlconv/preprocess"
	"wmlconv/state"
)

// job describes single command invocation.
type job struct {
	format   config.OutputFmt
	accept   sourceKind
	template *opc.Package
	seq      int
}

// source is a document picked for conversion. Name is part of the source
// path relative to the processed location, always including file name.
type source struct {
	name   string
	data   []byte
	enc    srcEncoding
	meta   metadata
	loader towml.ImageLoader
}

// ToHTML converts word processing documents to HTML.
func ToHTML(ctx context.Context, cmd *cli.Command) error {
	return run(ctx, cmd, &job{format: config.OutputFmtHtml, accept: kindDocx})
}

// ToWML converts HTML files to word processing documents, optionally placing
// result into template package.
func ToWML(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	j := &job{format: config.OutputFmtDocx, accept: kindHTML}
	tmpl := cmd.String("template")
	if tmpl == "" {
		tmpl = env.Cfg.WML.TemplatePath
	}
	if tmpl != "" {
		pkg, err := opc.OpenFile(tmpl)
		if err != nil {
			return fmt.Errorf("unable to open template: %w", err)
		}
		if pkg.Detect() != opc.KindDocx {
			return fmt.Errorf("template %q is not a word processing document", tmpl)
		}
		j.template = pkg
	}
	return run(ctx, cmd, j)
}

func run(ctx context.Context, cmd *cli.Command, j *job) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

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
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	env.CodePage = lookupEncoding(cmd.String("force-zip-cp"), "Forcefully converting all non UTF-8 file names in archives", log)
	env.Charset = lookupEncoding(cmd.String("charset"), "Forcefully decoding HTML input", log)
	if env.Replacements, err = parseReplacements(cmd.StringSlice("replace"), cmd.Bool("match-case")); err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", j.format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, j, log)
}

// parseReplacements reads SEARCH=REPLACE pairs, first '=' separates search
// text from replacement.
func parseReplacements(pairs []string, matchCase bool) ([]preprocess.Replacement, error) {
	var res []preprocess.Replacement
	for _, p := range pairs {
		search, replace, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("malformed replacement %q, expected SEARCH=REPLACE", p)
		}
		r := preprocess.Replacement{Search: search, Replace: replace, MatchCase: matchCase}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("replacement %q: %w", p, err)
		}
		res = append(res, r)
	}
	return res, nil
}

// lookupEncoding resolves IANA character set name, unknown names are
// reported and ignored.
func lookupEncoding(name, purpose string, log *zap.Logger) encoding.Encoding {
	if len(name) == 0 {
		return nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", name), zap.Error(err))
		return nil
	}
	n, _ := ianaindex.IANA.Name(enc)
	log.Debug(purpose, zap.String("charset", n))
	return enc
}

// process handles the core conversion logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, j *job, log *zap.Logger) error {
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
			return processDir(ctx, head, dst, j, log)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		kind, enc, err := detectFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if kind == kindArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, j, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}
		if kind == j.accept && len(tail) == 0 {
			data, err := os.ReadFile(head)
			if err != nil {
				return err
			}
			return processDocument(ctx, &source{
				name:   filepath.Base(head),
				data:   data,
				enc:    enc,
				loader: fileLoader(filepath.Dir(head)),
			}, dst, j, log)
		}
		return fmt.Errorf("input was not recognized as %s source (%s)", j.accept, head)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processDir walks directory tree finding documents and processes them.
// Failures of individual documents are collected and do not stop the walk.
func processDir(ctx context.Context, dir, dst string, j *job, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	var failed error
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

		kind, enc, err := detectFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if kind == kindArchive {
			if err := processArchive(ctx, path, "", filepath.Dir(rel), dst, j, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
				failed = multierr.Append(failed, fmt.Errorf("%s: %w", rel, err))
			}
			return nil
		}
		if kind != j.accept {
			log.Debug("Skipping file, not recognized as source or archive", zap.String("file", path))
			return nil
		}

		count++

		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			failed = multierr.Append(failed, fmt.Errorf("%s: %w", rel, err))
			return nil
		}
		src := &source{name: rel, data: data, enc: enc, loader: fileLoader(filepath.Dir(path))}
		if err := processDocument(ctx, src, dst, j, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			failed = multierr.Append(failed, fmt.Errorf("%s: %w", rel, err))
		}
		return nil
	})
	return multierr.Append(err, failed)
}

// processArchive walks all files inside archive, finds documents under
// "pathIn" and processes them.
func processArchive(ctx context.Context, arc, pathIn, pathOut, dst string, j *job, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", arc))
		}
	}()

	zr, err := zip.OpenReader(arc)
	if err != nil {
		return err
	}
	defer zr.Close()

	cp := state.EnvFromContext(ctx).CodePage

	var failed error
	err = archive.Walk(&zr.Reader, pathIn, func(f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		kind, enc, data, err := detectInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if kind != j.accept {
			log.Debug("Skipping file, not recognized as source", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

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
		src := &source{
			name:   filepath.Join(pathOut, filepath.FromSlash(pathInArchive)),
			data:   data,
			enc:    enc,
			loader: archiveLoader(&zr.Reader, path.Dir(f.FileHeader.Name)),
		}
		if err := processDocument(ctx, src, dst, j, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			failed = multierr.Append(failed, fmt.Errorf("%s: %w", f.FileHeader.Name, err))
		}
		return nil
	})
	return multierr.Append(err, failed)
}

// processDocument converts single source and writes result under "dst".
func processDocument(ctx context.Context, src *source, dst string, j *job, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)
	j.seq++

	var outputName string

	log.Info("Conversion starting", zap.String("from", src.name))
	defer func(start time.Time) {
		// NOTE: some of golang graphic processing libraries are not mature
		// enough, if multiple documents are being processed we do not want to stop.
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	var pkg *opc.Package
	switch j.format {
	case config.OutputFmtHtml:
		var err error
		if pkg, err = opc.Open(src.data); err != nil {
			return fmt.Errorf("unable to open document (%s): %w", src.name, err)
		}
		src.meta = docxMetadata(pkg)
		if env.Rpt != nil {
			env.Rpt.StoreData(fmt.Sprintf("sources/%03d-%s.txt", j.seq, filepath.Base(src.name)), []byte(packageTree(pkg)))
		}
	case config.OutputFmtDocx:
		data, err := decodeHTML(src.data, src.enc, env.Charset)
		if err != nil {
			return fmt.Errorf("unable to decode html source (%s): %w", src.name, err)
		}
		src.data = data
		src.meta = htmlMetadata(data)
	}

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(src, dst, j.format, env)

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

	// Generate output in the requested format
	var (
		warns []common.Warning
		err   error
	)
	switch j.format {
	case config.OutputFmtHtml:
		warns, err = writeHTML(ctx, pkg, outputName, env, log)
	case config.OutputFmtDocx:
		warns, err = writeDocx(ctx, src, j.template, outputName, env, log)
	}
	if err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}
	reportWarnings(warns, log)

	// Store conversion result for debugging
	if env.Rpt != nil {
		base := filepath.Base(outputName)
		if err := env.Rpt.StoreWarnings(fmt.Sprintf("warnings/%03d-%s.yaml", j.seq, base), warns); err != nil {
			log.Warn("Unable to store warnings in debug report", zap.Error(err))
		}
		if err := env.Rpt.StoreCopy(fmt.Sprintf("results/%03d-%s", j.seq, base), outputName); err != nil {
			log.Warn("Unable to store result in debug report", zap.Error(err))
		}
	}
	return nil
}

// decodeHTML brings source to UTF-8 when encoding is known from BOM or
// forced, otherwise HTML charset detection takes place during conversion.
func decodeHTML(data []byte, enc srcEncoding, forced encoding.Encoding) ([]byte, error) {
	var r io.Reader
	switch {
	case enc != encUnknown:
		r = selectReader(bytes.NewReader(data), enc)
	case forced != nil:
		r = forced.NewDecoder().Reader(bytes.NewReader(data))
	default:
		return data, nil
	}
	return io.ReadAll(r)
}

func writeHTML(ctx context.Context, pkg *opc.Package, outputName string, env *state.LocalEnv, log *zap.Logger) ([]common.Warning, error) {
	settings, err := env.Cfg.HTMLSettings()
	if err != nil {
		return nil, err
	}
	settings.Preprocess.Replacements = append(settings.Preprocess.Replacements, env.Replacements...)
	switch env.Cfg.HTML.Images.Mode {
	case config.ImageModeFiles:
		settings.ImageHandler = newImageWriter(outputName, settings.Images, log).handle
	case config.ImageModeDrop:
		settings.ImageHandler = dropImage
	}

	res, err := tohtml.Convert(ctx, pkg, settings, log)
	if err != nil {
		return nil, err
	}
	return res.Warnings, os.WriteFile(outputName, []byte(res.HTML), 0644)
}

func writeDocx(ctx context.Context, src *source, tmpl *opc.Package, outputName string, env *state.LocalEnv, log *zap.Logger) ([]common.Warning, error) {
	settings, err := env.Cfg.WMLSettings()
	if err != nil {
		return nil, err
	}
	settings.ImageLoader = src.loader

	res, err := towml.Convert(ctx, bytes.NewReader(src.data), settings, log)
	if err != nil {
		return nil, err
	}
	pkg, err := res.Package(tmpl)
	if err != nil {
		return nil, err
	}
	// template injection adds its own warnings
	return res.Warnings, pkg.WriteFile(outputName, env.Cfg.WML.FixZip)
}

// reportWarnings logs recoverable problems of a single conversion.
func reportWarnings(warns []common.Warning, log *zap.Logger) {
	for _, w := range warns {
		log.Warn("Conversion issue", zap.String("code", w.Code), zap.String("part", w.Part), zap.String("message", w.Message))
	}
}
