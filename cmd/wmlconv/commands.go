package main

import (
	"fmt"

	cli "github.com/urfave/cli/v3"

	"wmlconv/convert"
)

const sourceHelp = `%s
SOURCE:
    %[2]s input, one of:
        a single file: "[path_to_file]file.%[3]s"
        a directory: "[path_to_directory]directory" - every %[2]s file under it, symbolic links are not followed
        a file inside archive: "[path_to_archive]archive.zip[path_in_archive]/file.%[3]s"
        a directory inside archive: "[path_to_archive]archive.zip[path_in_archive]" - every %[2]s file under that path

    Archives found inside archives are skipped.

DESTINATION:
    output directory, names of produced files are derived from configuration (see output_name_template)
    if absent - current working directory
`

const destinationHelp = `%s
%s
DESTINATION:
    file name to write to, if absent - STDOUT
%s`

func conversionFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "do not reproduce input directory structure under destination"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace already existing output files"},
		&cli.StringFlag{Name: "force-zip-cp",
			Usage: "decode ALL non UTF-8 file names in archives using `ENCODING` (IANA character set name)"},
	}, extra...)
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:         "tohtml",
			Usage:        "Converts word processing document(s) to HTML",
			OnUsageError: usageErrorHandler,
			Action:       convert.ToHTML,
			Flags: conversionFlags(
				&cli.StringSliceFlag{Name: "replace", Aliases: []string{"r"},
					Usage: "replace text in paragraphs before conversion, `SEARCH=REPLACE`, may be repeated"},
				&cli.BoolFlag{Name: "match-case", Usage: "command line replacements are case sensitive"},
			),
			ArgsUsage:          "SOURCE [DESTINATION]",
			CustomHelpTemplate: fmt.Sprintf(sourceHelp, cli.CommandHelpTemplate, "word processing document", "docx"),
		},
		{
			Name:         "towml",
			Usage:        "Converts HTML file(s) to word processing document(s)",
			OnUsageError: usageErrorHandler,
			Action:       convert.ToWML,
			Flags: conversionFlags(
				&cli.StringFlag{Name: "template", Aliases: []string{"t"},
					Usage: "place converted content into document `FILE` keeping its styles, headers and page setup"},
				&cli.StringFlag{Name: "charset",
					Usage: "read HTML input as `ENCODING` (IANA character set name) instead of detecting it"},
			),
			ArgsUsage:          "SOURCE [DESTINATION]",
			CustomHelpTemplate: fmt.Sprintf(sourceHelp, cli.CommandHelpTemplate, "HTML", "html"),
		},
		{
			Name:         "parts",
			Usage:        "Lists parts and relationships of a package",
			OnUsageError: usageErrorHandler,
			Action:       convert.Parts,
			ArgsUsage:    "SOURCE [DESTINATION]",
			CustomHelpTemplate: fmt.Sprintf(destinationHelp, cli.CommandHelpTemplate, `SOURCE:
    path to docx (or any other OPC) package
`, ""),
		},
		{
			Name:  "dumpconfig",
			Usage: "Dumps either default or actual configuration (YAML)",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
			},
			OnUsageError: usageErrorHandler,
			Action:       convert.DumpConfig,
			ArgsUsage:    "DESTINATION",
			CustomHelpTemplate: fmt.Sprintf(destinationHelp, cli.CommandHelpTemplate, "", `
Actual configuration is the embedded defaults overlaid with values from
configuration file. Use --default to see embedded defaults alone.
`),
		},
	}
}
