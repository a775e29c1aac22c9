package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/output"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
	RunE:    runCategoryList,
}

var categoryAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories",
	Args:    cobra.NoArgs,
	RunE:    runCategoryList,
}

var categoryRmCmd = &cobra.Command{
	Use:   "rm NAME|ID",
	Short: "Remove a category",
	Long:  `Removes a category. Tasks that referenced it are shown without a category.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryRm,
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	RunE:  runTagList,
}

var tagAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagAdd,
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tags",
	Args:    cobra.NoArgs,
	RunE:    runTagList,
}

var tagRmCmd = &cobra.Command{
	Use:   "rm NAME|ID",
	Short: "Remove a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagRm,
}

func init() {
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd, categoryRmCmd)
	rootCmd.AddCommand(categoryCmd)

	tagAddCmd.Flags().String("color", "", "display color (hex or ANSI number)")
	tagCmd.AddCommand(tagAddCmd, tagListCmd, tagRmCmd)
	rootCmd.AddCommand(tagCmd)
}

func runCategoryAdd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	c, err := a.CreateCategory(ctx, args[0])
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, c)
	}
	output.Messagef(os.Stdout, "Added category %s: %s", output.ShortID(c.ID), c.Name)
	return nil
}

func runCategoryList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, a.Categories())
	}
	output.CategoryTable(os.Stdout, a.Categories())
	return nil
}

func runCategoryRm(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	if err := a.DeleteCategory(ctx, args[0]); err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"status": "deleted", "category": args[0]})
	}
	output.Messagef(os.Stdout, "Removed category %s", args[0])
	return nil
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	color, _ := cmd.Flags().GetString("color")
	tg, err := a.CreateTag(ctx, args[0], color)
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, tg)
	}
	output.Messagef(os.Stdout, "Added tag %s: %s", output.ShortID(tg.ID), tg.Name)
	return nil
}

func runTagList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, a.Tags())
	}
	output.TagTable(os.Stdout, a.Tags())
	return nil
}

func runTagRm(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	if err := a.DeleteTag(ctx, args[0]); err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"status": "deleted", "tag": args[0]})
	}
	output.Messagef(os.Stdout, "Removed tag %s", args[0])
	return nil
}
