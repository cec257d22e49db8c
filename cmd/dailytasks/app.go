package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/daily-tasks/internal/config"
	"github.com/BuzzLyutic/daily-tasks/internal/model"
	"github.com/BuzzLyutic/daily-tasks/internal/repo"
	"github.com/BuzzLyutic/daily-tasks/internal/service"
	"github.com/BuzzLyutic/daily-tasks/pkg/respond"
)

const descriptionLimit = 50

// app is the command-line adapter. It only parses arguments, calls the
// task manager and renders what comes back.
type app struct {
	out     io.Writer
	logger  *zap.Logger
	manager *service.TaskManager
}

func newApp(out io.Writer) *app {
	return &app{out: out}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "dailytasks",
		Usage: "Track your daily tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML settings file",
				Sources: cli.EnvVars("DT_CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend: json, sqlite or postgres",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List tasks",
				Flags:  []cli.Flag{newFilterFlag()},
				Action: a.runList,
			},
			{
				Name:      "show",
				Usage:     "Show a task by id",
				ArgsUsage: "<id>",
				Action:    a.runShow,
			},
			{
				Name:      "view",
				Usage:     "Show the task at a row of the listing",
				ArgsUsage: "<row>",
				Flags:     []cli.Flag{newFilterFlag()},
				Action:    a.runView,
			},
			{
				Name:  "add",
				Usage: "Create a task",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
					&cli.BoolFlag{Name: "completed"},
				},
				Action: a.runAdd,
			},
			{
				Name:      "edit",
				Usage:     "Change some fields of a task",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
					&cli.BoolFlag{Name: "completed"},
				},
				Action: a.runEdit,
			},
			{
				Name:      "done",
				Usage:     "Mark a task as completed",
				ArgsUsage: "<id>",
				Action:    a.runDone,
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				ArgsUsage: "<id>",
				Action:    a.runDelete,
			},
		},
		DefaultCommand: "list",
		After: func(_ context.Context, _ *cli.Command) error {
			if a.logger != nil {
				a.logger.Sync()
			}
			return nil
		},
	}
}

func newFilterFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "filter",
		Aliases: []string{"f"},
		Usage:   "all, active or completed",
		Value:   string(model.FilterAll),
	}
}

// open resolves the settings and builds the store and task manager.
func (a *app) open(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return err
		}
	}
	if backend := cmd.String("backend"); backend != "" {
		cfg.Backend = backend
	}

	logger, err := newLogger(cfg.LogLevel, cmd.Bool("debug"))
	if err != nil {
		return err
	}
	a.logger = logger

	store, err := repo.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	a.manager, err = service.NewTaskManager(ctx, store, logger)
	return err
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log level: %w", config.ErrValidation, err)
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func (a *app) runList(ctx context.Context, cmd *cli.Command) error {
	if err := a.open(ctx, cmd); err != nil {
		return a.handleError(cmd, err)
	}
	tasks, err := a.filter(ctx, cmd)
	if err != nil {
		return a.handleError(cmd, err)
	}
	return a.renderTasks(cmd, tasks)
}

func (a *app) runShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return a.handleError(cmd, err)
	}
	if err := a.open(ctx, cmd); err != nil {
		return a.handleError(cmd, err)
	}
	task, err := a.manager.GetByID(ctx, id)
	if err != nil {
		return a.handleError(cmd, err)
	}
	return a.renderTask(cmd, task)
}

func (a *app) runView(ctx context.Context, cmd *cli.Command) error {
	row, err := strconv.Atoi(cmd.Args().First())
	if err != nil {
		return a.handleError(cmd, fmt.Errorf("invalid row %q", cmd.Args().First()))
	}
	if err := a.open(ctx, cmd); err != nil {
		return a.handleError(cmd, err)
	}
	if _, err := a.filter(ctx, cmd); err != nil {
		return a.handleError(cmd, err)
	}
	task, err := a.manager.GetVisible(row - 1)
	if err != nil {
		return a.handleError(cmd, err)
	}
	return a.renderTask(cmd, task)
}

func (a *app) runAdd(ctx context.Context, cmd *cli.Command) error {
	if err := a.open(ctx, cmd); err != nil {
		return a.handleError(cmd, err)
	}
	tasks, err := a.manager.Create(ctx, model.Task{
		Title:       cmd.String("title"),
		Description: cmd.String("description"),
		Completed:   cmd.Bool("completed"),
	})
	if err != nil {
		return a.handleError(cmd, err)
	}
	return a.renderTasks(cmd, tasks)
}

func (a *app) runEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return a.handleError(cmd, err)
	}

	var patch model.TaskPatch
	if cmd.IsSet("title") {
		v := cmd.String("title")
		patch.Title = &v
	}
	if cmd.IsSet("description") {
		v := cmd.String("description")
		patch.Description = &v
	}
	if cmd.IsSet("completed") {
		v := cmd.Bool("completed")
		patch.Completed = &v
	}

	if err := a.open(ctx, cmd); err != nil {
		return a.handleError(cmd, err)
	}
	tasks, err := a.manager.Edit(ctx, id, patch)
	if err != nil {
		return a.handleError(cmd, err)
	}
	return a.renderTasks(cmd, tasks)
}

func (a *app) runDone(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return a.handleError(cmd, err)
	}
	if err := a.open(ctx, cmd); err != nil {
		return a.handleError(cmd, err)
	}
	tasks, err := a.manager.Complete(ctx, id)
	if err != nil {
		return a.handleError(cmd, err)
	}
	return a.renderTasks(cmd, tasks)
}

func (a *app) runDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return a.handleError(cmd, err)
	}
	if err := a.open(ctx, cmd); err != nil {
		return a.handleError(cmd, err)
	}
	tasks, err := a.manager.Delete(ctx, id)
	if err != nil {
		return a.handleError(cmd, err)
	}
	return a.renderTasks(cmd, tasks)
}

func (a *app) filter(ctx context.Context, cmd *cli.Command) ([]model.Task, error) {
	f, err := model.ParseFilter(cmd.String("filter"))
	if err != nil {
		return nil, err
	}
	return a.manager.Filter(ctx, f)
}

func parseID(cmd *cli.Command) (int64, error) {
	arg := cmd.Args().First()
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func (a *app) renderTasks(cmd *cli.Command, tasks []model.Task) error {
	if cmd.Bool("json") {
		return respond.JSON(a.out, tasks)
	}
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(a.out, "No tasks found.")
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tID\tDONE\tTITLE\tDESCRIPTION")
	for i, t := range tasks {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", i+1, t.ID, doneMark(t), t.Title, shortDescription(t))
	}
	return w.Flush()
}

func (a *app) renderTask(cmd *cli.Command, t model.Task) error {
	if cmd.Bool("json") {
		return respond.JSON(a.out, t)
	}
	_, err := fmt.Fprintf(a.out, "#%d %s [%s]\n%s\n", t.ID, t.Title, doneMark(t), t.Description)
	return err
}

func doneMark(t model.Task) string {
	if t.Completed {
		return "x"
	}
	return " "
}

func shortDescription(t model.Task) string {
	if len([]rune(t.Description)) <= descriptionLimit {
		return t.Description
	}
	return t.DescriptionDisplayText(descriptionLimit)
}

// handleError turns store and manager errors into user-facing messages.
func (a *app) handleError(cmd *cli.Command, err error) error {
	var msg string
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		msg = "task not found"
	case errors.Is(err, repo.ErrorCapacityExceeded):
		msg = fmt.Sprintf("task file is full (%d tasks max), delete some tasks first", repo.MaxTasks)
	case errors.Is(err, service.ErrIndexOutOfRange):
		msg = "no task at that row"
	case errors.Is(err, service.ErrValidation), errors.Is(err, config.ErrValidation), errors.Is(err, model.ErrUnknownFilter):
		msg = err.Error()
	default:
		if a.logger != nil {
			a.logger.Error("command failed", zap.String("command", cmd.Name), zap.Error(err))
		}
		msg = err.Error()
	}

	if cmd.Bool("json") {
		respond.Error(a.out, msg)
	}
	return &commandError{msg: msg, err: err}
}

type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string { return e.msg }
func (e *commandError) Unwrap() error { return e.err }
