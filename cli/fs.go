package cli

import (
	"encoding/json"
	"fmt"

	"github.com/compozy/agentfs/engine/tool/builtin"
	"github.com/compozy/agentfs/engine/tool/builtin/filesystem"
	"github.com/spf13/cobra"
)

// callTool wraps the definition, encodes the arguments, and executes the tool
// with the fully wired command context.
func callTool(cmd *cobra.Command, definition builtin.BuiltinDefinition, args map[string]any) (string, error) {
	ctx, err := setupCommandContext(cmd)
	if err != nil {
		return "", err
	}
	tool, err := builtin.NewBuiltinTool(definition)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to encode arguments: %w", err)
	}
	return tool.Call(ctx, string(payload))
}

func ResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Normalize a path and validate it against the sandbox policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := callTool(cmd, filesystem.ResolvePathDefinition(), map[string]any{"path": args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func CatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print the contents of a file inside the sandbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := callTool(cmd, filesystem.ReadFileDefinition(), map[string]any{"path": args[0]})
			if err != nil {
				return err
			}
			var output struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal([]byte(result), &output); err != nil {
				return fmt.Errorf("failed to decode tool output: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), output.Content)
			return nil
		},
	}
}

func LsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <path>",
		Short: "List directory contents inside the sandbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs := map[string]any{"path": args[0]}
			if pattern, err := cmd.Flags().GetString("pattern"); err == nil && pattern != "" {
				toolArgs["pattern"] = pattern
			}
			if recursive, err := cmd.Flags().GetBool("recursive"); err == nil && recursive {
				toolArgs["recursive"] = true
			}
			result, err := callTool(cmd, filesystem.ListDirDefinition(), toolArgs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().String("pattern", "", "Glob pattern applied to entries")
	cmd.Flags().BoolP("recursive", "r", false, "Traverse the directory tree recursively")
	return cmd
}

func WriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <path> <content>",
		Short: "Write content to a file inside the sandbox",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs := map[string]any{"path": args[0], "content": args[1]}
			if appendMode, err := cmd.Flags().GetBool("append"); err == nil && appendMode {
				toolArgs["append"] = true
			}
			result, err := callTool(cmd, filesystem.WriteFileDefinition(), toolArgs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().BoolP("append", "a", false, "Append to the existing file instead of truncating it")
	return cmd
}

func RmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file or directory inside the sandbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs := map[string]any{"path": args[0]}
			if recursive, err := cmd.Flags().GetBool("recursive"); err == nil && recursive {
				toolArgs["recursive"] = true
			}
			result, err := callTool(cmd, filesystem.DeleteFileDefinition(), toolArgs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().BoolP("recursive", "r", false, "Allow recursive deletion of directories")
	return cmd
}
