package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/formhelper/formhelper/constants"
	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/export"
	"github.com/formhelper/formhelper/internal/extract"
	"github.com/formhelper/formhelper/internal/process"
	"github.com/formhelper/formhelper/internal/repository"
	"github.com/formhelper/formhelper/internal/table"
)

const usage = `usage: formhelper <command> [flags]

commands:
  process   extract tables from a document and persist them
  export    write a person's tables to csv or xlsx
  person    add | list | update | delete
  file      add | list | delete
  record    list | update | delete
`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	ctx := context.Background()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close store", "error", cerr)
		}
	}()

	app := &app{
		cfg:     cfg,
		logger:  logger,
		persons: repository.NewPersonRepository(db, logger),
		files:   repository.NewFileRepository(db, logger),
		records: repository.NewRecordRepository(db, logger),
	}

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *common.Config
	logger  *slog.Logger
	persons repository.PersonRepository
	files   repository.FileRepository
	records repository.RecordRepository
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "process":
		return a.processCmd(ctx, args)
	case "export":
		return a.exportCmd(ctx, args)
	case "person":
		return a.personCmd(ctx, args)
	case "file":
		return a.fileCmd(ctx, args)
	case "record":
		return a.recordCmd(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) processCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	filePath := fs.String("file", "", "path of the document to process")
	fileType := fs.String("type", "", "declared file type: pdf | image | word | excel (default: inferred from extension)")
	personID := fs.Int64("person", 0, "person id to attribute the file to (0 = unattributed)")
	_ = fs.Parse(args)
	if *filePath == "" {
		return fmt.Errorf("process: -file is required")
	}
	if *fileType == "" {
		*fileType = constants.FileTypeForExt(filepath.Ext(*filePath))
		if *fileType == "" {
			return fmt.Errorf("process: -type is required when it cannot be inferred from %q", *filePath)
		}
	}

	registry := extract.NewRegistry(a.cfg.OCR, a.logger)
	svc := process.NewService(registry, a.files, a.records, a.cfg.Process, a.logger)

	result, err := svc.ProcessFile(ctx, *filePath, *fileType, optionalID(*personID))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) exportCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	personID := fs.Int64("person", 0, "person id to export")
	out := fs.String("out", "", "destination file path")
	format := fs.String("format", "csv", "output format: csv | xlsx")
	_ = fs.Parse(args)
	if *personID == 0 || *out == "" {
		return fmt.Errorf("export: -person and -out are required")
	}

	svc := export.NewService(a.records, a.logger)
	return svc.Export(ctx, *personID, *out, export.Format(*format))
}

func (a *app) personCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("person: add | list | update | delete")
	}
	fs := flag.NewFlagSet("person "+args[0], flag.ExitOnError)
	id := fs.Int64("id", 0, "person id")
	name := fs.String("name", "", "person name")

	switch args[0] {
	case "add":
		_ = fs.Parse(args[1:])
		if *name == "" {
			return fmt.Errorf("person add: -name is required")
		}
		p, err := a.persons.Create(ctx, *name)
		if err != nil {
			return err
		}
		return printJSON(p)
	case "list":
		persons, err := a.persons.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(persons)
	case "update":
		_ = fs.Parse(args[1:])
		if *id == 0 || *name == "" {
			return fmt.Errorf("person update: -id and -name are required")
		}
		return a.persons.Update(ctx, *id, *name)
	case "delete":
		_ = fs.Parse(args[1:])
		if *id == 0 {
			return fmt.Errorf("person delete: -id is required")
		}
		return a.persons.Delete(ctx, *id)
	default:
		return fmt.Errorf("person: unknown subcommand %q", args[0])
	}
}

func (a *app) fileCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("file: add | list | delete")
	}
	fs := flag.NewFlagSet("file "+args[0], flag.ExitOnError)
	id := fs.Int64("id", 0, "file id")
	personID := fs.Int64("person", 0, "person id (0 = unattributed)")
	name := fs.String("name", "", "display file name")
	path := fs.String("path", "", "source path")
	fileType := fs.String("type", "", "file type")

	switch args[0] {
	case "add":
		_ = fs.Parse(args[1:])
		if *name == "" || *path == "" || *fileType == "" {
			return fmt.Errorf("file add: -name, -path and -type are required")
		}
		if !constants.IsSupportedFileType(*fileType) {
			return fmt.Errorf("file add: unsupported type %q", *fileType)
		}
		f, err := a.files.Create(ctx, optionalID(*personID), *name, *path, *fileType)
		if err != nil {
			return err
		}
		return printJSON(f)
	case "list":
		files, err := a.files.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(files)
	case "delete":
		_ = fs.Parse(args[1:])
		if *id == 0 {
			return fmt.Errorf("file delete: -id is required")
		}
		return a.files.Delete(ctx, *id)
	default:
		return fmt.Errorf("file: unknown subcommand %q", args[0])
	}
}

func (a *app) recordCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("record: list | update | delete")
	}
	fs := flag.NewFlagSet("record "+args[0], flag.ExitOnError)
	id := fs.Int64("id", 0, "record id")
	fileID := fs.Int64("file", 0, "filter by file id")
	personID := fs.Int64("person", 0, "filter by person id")
	content := fs.String("content", "", "replacement content JSON")

	switch args[0] {
	case "list":
		_ = fs.Parse(args[1:])
		// The file filter wins when both are given.
		switch {
		case *fileID != 0:
			records, err := a.records.ListByFile(ctx, *fileID)
			if err != nil {
				return err
			}
			return printJSON(records)
		case *personID != 0:
			records, err := a.records.ListByPerson(ctx, *personID)
			if err != nil {
				return err
			}
			return printJSON(records)
		default:
			records, err := a.records.List(ctx)
			if err != nil {
				return err
			}
			return printJSON(records)
		}
	case "update":
		_ = fs.Parse(args[1:])
		if *id == 0 || *content == "" {
			return fmt.Errorf("record update: -id and -content are required")
		}
		if err := table.ValidateContent(*content); err != nil {
			return err
		}
		return a.records.Update(ctx, *id, *content)
	case "delete":
		_ = fs.Parse(args[1:])
		if *id == 0 {
			return fmt.Errorf("record delete: -id is required")
		}
		return a.records.Delete(ctx, *id)
	default:
		return fmt.Errorf("record: unknown subcommand %q", args[0])
	}
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
