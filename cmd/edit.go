package cmd

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task. Only specified fields are changed.
ID may be any unique prefix of the task ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("priority", "", "new priority (low, medium, high, or none)")
	editCmd.Flags().StringSlice("add-tag", nil, "add tags")
	editCmd.Flags().StringSlice("remove-tag", nil, "remove tags")
	editCmd.Flags().String("due", "", "new due date (YYYY-MM-DD)")
	editCmd.Flags().String("at", "", "new due time of day (e.g. 3pm)")
	editCmd.Flags().Bool("clear-due", false, "clear due date")
	editCmd.Flags().String("category", "", "new category name or ID")
	editCmd.Flags().Bool("clear-category", false, "clear category")
	editCmd.Flags().String("body", "", "new description (replaces the existing one)")
	editCmd.Flags().SetNormalizeFunc(normalizeTaskFlags)
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	t, err := a.Task(args[0])
	if err != nil {
		return err
	}
	fields, err := editFields(cmd, a, t)
	if err != nil {
		return err
	}

	if _, err := a.Dispatch(ctx, intent.Intent{Kind: intent.Update, ID: t.ID, Fields: fields}); err != nil {
		return err
	}
	updated, err := a.Task(t.ID)
	if err != nil {
		return err
	}
	return printTask(a, updated, "Updated")
}

// editFields collects the changed flags into an update field map.
func editFields(cmd *cobra.Command, a *app.App, t *task.Task) (map[string]any, error) {
	fields := make(map[string]any)
	flags := cmd.Flags()

	if flags.Changed("title") {
		fields["title"], _ = flags.GetString("title")
	}
	if flags.Changed("body") {
		fields["description"], _ = flags.GetString("body")
	}
	if flags.Changed("priority") {
		p, _ := flags.GetString("priority")
		p = strings.ToLower(p)
		if p == "none" {
			p = ""
		}
		fields["priority"] = p
	}

	clearDue, _ := flags.GetBool("clear-due")
	switch {
	case clearDue:
		fields["dueDate"] = nil
	case flags.Changed("due") || flags.Changed("at"):
		dueStr, _ := flags.GetString("due")
		atStr, _ := flags.GetString("at")
		if dueStr == "" && t.DueDate != nil {
			dueStr = t.DueDate.In(a.Now().Location()).Format("2006-01-02")
		}
		due, err := parseDue(dueStr, atStr, a.Now())
		if err != nil {
			return nil, err
		}
		fields["dueDate"] = due
	}

	clearCat, _ := flags.GetBool("clear-category")
	switch {
	case clearCat:
		fields["categoryId"] = nil
	case flags.Changed("category"):
		ref, _ := flags.GetString("category")
		id, err := a.CategoryID(ref)
		if err != nil {
			return nil, err
		}
		fields["categoryId"] = id
	}

	adds, _ := flags.GetStringSlice("add-tag")
	removes, _ := flags.GetStringSlice("remove-tag")
	if len(adds) > 0 || len(removes) > 0 {
		tags := slices.Clone(t.Tags)
		for _, ref := range adds {
			id, err := a.TagID(ref)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(tags, id) {
				tags = append(tags, id)
			}
		}
		for _, ref := range removes {
			id, err := a.TagID(ref)
			if err != nil {
				id = ref
			}
			tags = slices.DeleteFunc(tags, func(s string) bool { return s == id })
		}
		fields["tags"] = tags
	}

	return fields, nil
}
