package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

const maxTaskWidth = 80

func doUI(ctx context.Context, e *env, a []string) int {
	fs := subFlags("ui")
	if code := parseSub(e, fs, "ui", a); code >= 0 {
		return code
	}
	if fs.NArg() > 0 {
		return usageError(e, "ui")
	}
	if err := ui.Run(ctx, e.ctrl, ui.Options{Theme: ui.Current()}); err != nil {
		if ctx.Err() != nil {
			return ExitOK
		}
		e.logger.Error("ui stopped", "err", err)
		ui.Fail(e.stderr, err.Error())
		return ExitFail
	}
	return ExitOK
}

func doList(ctx context.Context, e *env, a []string) int {
	fs := subFlags("ls")
	group := fs.BoolP("group", "g", false, "Group output by pending/done")
	if code := parseSub(e, fs, "ls [--group]", a); code >= 0 {
		return code
	}
	if fs.NArg() > 0 {
		return usageError(e, "ls [--group]")
	}

	if !load(ctx, e) {
		return ExitFail
	}

	t := ui.Current()
	items := e.ctrl.Items()
	done, total := e.ctrl.Completed(), e.ctrl.Total()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymOK), done,
		t.Pending.Render("•"), total-done,
		t.Accent.Render("Total"), total,
	)

	lines := []string{header, ui.Readout(t, done, total), ui.ProgressBar(t, done, total, 28), ""}
	if *group {
		lines = append(lines, groupLines(t, items)...)
	} else {
		lines = append(lines, flatLines(t, items)...)
	}
	lines = append(lines, "", t.Muted.Render(`Tip: add with tada add "Buy milk"`))
	fmt.Fprintln(e.stdout, ui.Panel(t, lines))
	return ExitOK
}

func doAdd(ctx context.Context, e *env, a []string) int {
	const usage = "add <task...>"
	fs := subFlags("add")
	if code := parseSub(e, fs, usage, a); code >= 0 {
		return code
	}
	task := joinArgs(fs.Args())
	if strings.TrimSpace(task) == "" {
		return usageError(e, usage)
	}

	before := e.ctrl.Total()
	e.ctrl.Run(e.ctrl.Add(ctx, task))
	if e.ctrl.Err() != "" || e.ctrl.Total() == before {
		return fail(e)
	}
	items := e.ctrl.Items()
	ui.OK(e.stdout, "added #"+items[len(items)-1].ID.String())
	return ExitOK
}

func doToggle(ctx context.Context, e *env, a []string) int {
	const usage = "done <id>"
	id, code := parseIDArg(e, "done", usage, a)
	if code >= 0 {
		return code
	}
	if !load(ctx, e) {
		return ExitFail
	}
	if _, ok := e.ctrl.Item(id); !ok {
		ui.Fail(e.stderr, "no todo with id "+id.String())
		ui.Hint(e.stderr, "Hint: run `tada ls` to see valid ids")
		return ExitFail
	}

	e.ctrl.Run(e.ctrl.Toggle(ctx, id))
	if e.ctrl.Err() != "" {
		return fail(e)
	}
	it, ok := e.ctrl.Item(id)
	if !ok {
		return fail(e)
	}
	state := "pending"
	if it.Completed {
		state = "done"
	}
	ui.OK(e.stdout, fmt.Sprintf("#%s %s: %s", it.ID, state, it.Task))
	return ExitOK
}

func doRemove(ctx context.Context, e *env, a []string) int {
	id, code := parseIDArg(e, "rm", "rm <id>", a)
	if code >= 0 {
		return code
	}
	e.ctrl.Run(e.ctrl.Delete(ctx, id))
	if e.ctrl.Err() != "" {
		return fail(e)
	}
	ui.OK(e.stdout, "removed #"+id.String())
	return ExitOK
}

func doConfig(e *env, a []string) int {
	const usage = "config show | config init [--force]"
	if len(a) == 0 {
		return usageError(e, usage)
	}

	switch a[0] {
	case "show":
		fs := subFlags("config show")
		if code := parseSub(e, fs, "config show", a[1:]); code >= 0 {
			return code
		}
		for _, f := range e.cfg.Files {
			fmt.Fprintln(e.stdout, "# read "+f)
		}
		if err := config.Encode(e.stdout, *e.cfg); err != nil {
			ui.Fail(e.stderr, err.Error())
			return ExitFail
		}
		return ExitOK

	case "init":
		fs := subFlags("config init")
		force := fs.BoolP("force", "f", false, "Overwrite an existing file")
		if code := parseSub(e, fs, "config init [--force]", a[1:]); code >= 0 {
			return code
		}
		path, err := config.UserConfigPath()
		if err != nil {
			ui.Fail(e.stderr, err.Error())
			return ExitFail
		}
		if err := config.WriteFile(path, config.Default(), *force); err != nil {
			ui.Fail(e.stderr, err.Error())
			if errors.Is(err, config.ErrExists) {
				ui.Hint(e.stderr, "Hint: pass --force to overwrite it")
			}
			return ExitFail
		}
		ui.OK(e.stdout, "wrote "+path)
		return ExitOK
	}
	return usageError(e, usage)
}

// load runs the initial load and reports failures. It returns false when
// the list could not be fetched.
func load(ctx context.Context, e *env) bool {
	e.ctrl.Run(e.ctrl.Load(ctx))
	if e.ctrl.Err() != "" {
		fail(e)
		ui.Hint(e.stderr, "Hint: is the API reachable at "+e.cfg.APIURL+"?")
		return false
	}
	return true
}

// fail prints the controller's error message.
func fail(e *env) int {
	msg := e.ctrl.Err()
	if msg == "" {
		msg = "request failed"
	}
	ui.Fail(e.stderr, msg)
	return ExitFail
}

func parseIDArg(e *env, name, usage string, a []string) (model.ID, int) {
	fs := subFlags(name)
	if code := parseSub(e, fs, usage, a); code >= 0 {
		return "", code
	}
	if fs.NArg() != 1 {
		return "", usageError(e, usage)
	}
	id, err := model.ParseID(strings.TrimPrefix(fs.Arg(0), "#"))
	if err != nil {
		ui.Fail(e.stderr, name+": "+err.Error())
		return "", ExitUsage
	}
	return id, -1
}

// -------------- rendering helpers --------------

func flatLines(t ui.Theme, items []model.Item) []string {
	if len(items) == 0 {
		return []string{t.Muted.Render("no items")}
	}
	width := 0
	for _, it := range items {
		width = max(width, len(it.ID.String()))
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		it.Task = truncate(it.Task, maxTaskWidth)
		idx := fmt.Sprintf("#%-*s", width, it.ID)
		out = append(out, t.Muted.Render(idx)+" "+ui.Row(t, it))
	}
	return out
}

func groupLines(t ui.Theme, items []model.Item) []string {
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(t, pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(t, done)...)
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
