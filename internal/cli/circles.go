package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/circles/internal/circles"
	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/ui"
)

func (a *App) lsCmd() *cobra.Command {
	var p model.PageParams
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List circles one page at a time",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if p.PageSize == 0 {
				p.PageSize = a.cfg.UI.PageSize
			}
			ctrl, _, err := a.controller(a.console())
			if err != nil {
				return err
			}
			page, err := ctrl.List(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("list circles: %w", err)
			}
			a.printPage(p.Normalize(), page)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&p.Current, "page", 1, "page number, starting at 1")
	f.IntVar(&p.PageSize, "size", 0, "rows per page (default ui.page_size)")
	f.StringVar(&p.Name, "name", "", "filter by name")
	f.StringVar(&p.Desc, "desc", "", "filter by description")
	return cmd
}

func (a *App) printPage(p model.PageParams, page model.Page) {
	t := ui.Current()
	header := fmt.Sprintf("%s  %s",
		t.Title.Render("Circles"),
		t.Muted.Render(fmt.Sprintf("page %d/%d • %d total", p.Current, model.Pages(page.Total, p.PageSize), page.Total)),
	)
	lines := []string{header, ""}
	if len(page.Data) == 0 {
		lines = append(lines, t.Muted.Render("no circles"))
	} else {
		heads := []string{"ID"}
		widths := []int{36}
		for _, c := range circles.Columns {
			heads = append(heads, c.Title)
			widths = append(widths, c.Width)
		}
		rows := make([][]string, 0, len(page.Data))
		for _, c := range page.Data {
			rows = append(rows, append([]string{c.ID}, circles.Cells(c)...))
		}
		lines = append(lines, ui.Table(heads, widths, rows)...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: add with `circles add --name Runners --desc \"Morning jog\" --avatar ./a.png`"))
	ui.Panel(a.Out, lines)
}

func (a *App) addCmd() *cobra.Command {
	var f circles.Form
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a circle",
		Long:  "Create a circle. An --avatar that names a local image file is uploaded first.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := circles.Resolve(f, nil)
			if err != nil {
				return &usageError{err: err}
			}
			ctrl, _, err := a.controller(a.console())
			if err != nil {
				return err
			}
			if !ctrl.Dispatch(cmd.Context(), d) {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "circle name (unique)")
	cmd.Flags().StringVar(&f.Desc, "desc", "", "description")
	cmd.Flags().StringVar(&f.Avatar, "avatar", "", "image file to upload, or an uploaded reference")
	return cmd
}

func (a *App) updateCmd() *cobra.Command {
	var f circles.Form
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a circle",
		Long:  "Change fields of a circle. Only the flags given are sent.",
		Args:  exactArgs(1, "ID [--name N] [--desc D] [--avatar A]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("desc") && !flags.Changed("avatar") {
				return usagef("update: nothing to change, pass --name, --desc or --avatar")
			}
			ctrl, r, err := a.controller(a.console())
			if err != nil {
				return err
			}
			current, err := r.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get circle %s: %w", args[0], err)
			}
			form := circles.FormOf(current)
			if flags.Changed("name") {
				form.Name = f.Name
			}
			if flags.Changed("desc") {
				form.Desc = f.Desc
			}
			if flags.Changed("avatar") {
				form.Avatar = f.Avatar
			}
			d, err := circles.Resolve(form, &current)
			if err != nil {
				return &usageError{err: err}
			}
			if p, ok := d.(model.ExistingPatch); ok && p.Empty() {
				ui.OK(a.Out, fmt.Sprintf("%s already up to date, nothing sent", current.ID))
				return nil
			}
			if !ctrl.Dispatch(cmd.Context(), d) {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "new name")
	cmd.Flags().StringVar(&f.Desc, "desc", "", "new description")
	cmd.Flags().StringVar(&f.Avatar, "avatar", "", "new avatar file or reference")
	return cmd
}

func (a *App) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID...",
		Short: "Delete circles in one call",
		Args:  minArgs(1, "ID..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.controller(a.console())
			if err != nil {
				return err
			}
			rows := make([]model.Circle, 0, len(args))
			for _, id := range args {
				rows = append(rows, model.Circle{ID: id})
			}
			if !ctrl.Remove(cmd.Context(), rows) {
				return errReported
			}
			return nil
		},
	}
}

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one circle",
		Args:  exactArgs(1, "ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.remote()
			if err != nil {
				return err
			}
			c, err := r.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get circle %s: %w", args[0], err)
			}
			t := ui.Current()
			lines := []string{t.Title.Render(c.Name), t.Muted.Render(c.ID), ""}
			for _, f := range circles.Detail(c) {
				lines = append(lines, t.Accent.Width(13).Render(f.Label)+f.Value)
			}
			ui.Panel(a.Out, lines)
			return nil
		},
	}
}
