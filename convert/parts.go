package convert

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wmlconv/config"
	"wmlconv/opc"
	"wmlconv/state"
)

// Parts lists parts and relationships of a package.
func Parts(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("parts")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	pkg, err := opc.OpenFile(src)
	if err != nil {
		return fmt.Errorf("unable to open package: %w", err)
	}

	out, fname, err := openDestination(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, out.Close()) }()

	log.Info("Listing package", zap.String("source", src), zap.String("file", fname))
	if _, err := out.Write([]byte(packageTree(pkg))); err != nil {
		return fmt.Errorf("unable to write listing: %w", err)
	}
	return nil
}

// DumpConfig writes either embedded default or currently active
// configuration.
func DumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		kind = "actual"
	)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	out, fname, err := openDestination(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, out.Close()) }()

	env.Log.Info("Writing configuration", zap.String("state", kind), zap.String("file", fname))
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
