package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "idearadar",
		Short:         "Score startup ideas against market signals and match them to founders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(scoreCmd())
	root.AddCommand(addCmd())
	root.AddCommand(ideasCmd())
	root.AddCommand(bookmarkCmd())
	root.AddCommand(matchCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

// ideaFlags are the descriptive fields shared by score and add.
type ideaFlags struct {
	id         string
	title      string
	problem    string
	solution   string
	targetUser string
	whyNow     string
	tags       []string
	difficulty int
	buildType  string
}

func (f *ideaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "idea key (default: derived from title)")
	cmd.Flags().StringVar(&f.title, "title", "", "idea title")
	cmd.Flags().StringVar(&f.problem, "problem", "", "problem statement")
	cmd.Flags().StringVar(&f.solution, "solution", "", "proposed solution")
	cmd.Flags().StringVar(&f.targetUser, "target-user", "", "who the idea is for")
	cmd.Flags().StringVar(&f.whyNow, "why-now", "", "why the timing is right")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tags (repeatable or comma separated)")
	cmd.Flags().IntVar(&f.difficulty, "difficulty", 3, "build difficulty 1-5")
	cmd.Flags().StringVar(&f.buildType, "build-type", "", "build type (e.g. SaaS, Mobile App)")
	_ = cmd.MarkFlagRequired("title")
}

func scoreCmd() *cobra.Command {
	var (
		f          ideaFlags
		jsonOutput bool
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an idea from market signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), &f, jsonOutput, save)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "store the idea and its score")
	return cmd
}

func addCmd() *cobra.Command {
	var (
		f        ideaFlags
		scoreNow bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store an idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), &f, scoreNow)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&scoreNow, "score", false, "score the idea after storing it")
	return cmd
}

func ideasCmd() *cobra.Command {
	var (
		jsonOutput bool
		bookmarked bool
		opts       listFlags
	)

	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "List stored ideas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdeas(cmd.Context(), opts, bookmarked, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&opts.tag, "tag", "", "only ideas with this tag")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "minimum score")
	cmd.Flags().StringVar(&opts.query, "query", "", "search title and problem")
	cmd.Flags().StringVar(&opts.user, "user", "", "user for --bookmarked")
	cmd.Flags().BoolVar(&bookmarked, "bookmarked", false, "only ideas bookmarked by --user")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "max ideas to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func bookmarkCmd() *cobra.Command {
	var (
		user   string
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "bookmark <idea-id>",
		Short: "Bookmark an idea for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBookmark(cmd.Context(), user, args[0], !remove)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the bookmark")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func matchCmd() *cobra.Command {
	var (
		profilePath string
		user        string
		limit       int
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank stored ideas by fit for a founder profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), profilePath, user, limit, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "founder profile YAML file")
	cmd.Flags().StringVar(&user, "user", "", "use the stored profile of this user")
	cmd.Flags().IntVar(&limit, "limit", 10, "max ideas to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.MarkFlagsOneRequired("profile", "user")
	cmd.MarkFlagsMutuallyExclusive("profile", "user")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, false)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with rescoring scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, true)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
