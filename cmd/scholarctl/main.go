// Command scholarctl manages site content through the scholarfolio API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/scholarfolio/backend/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type app struct {
	v   *viper.Viper
	out io.Writer
	err io.Writer
}

func (a *app) client() *client.Client {
	opts := []client.Option{}
	if tok := a.v.GetString("token"); tok != "" {
		opts = append(opts, client.WithToken(tok))
	}
	return client.New(a.v.GetString("api"), opts...)
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Success and Error make app the editor's notifier.
func (a *app) Success(msg string) { fmt.Fprintln(a.err, msg) }
func (a *app) Error(msg string)   { fmt.Fprintln(a.err, "error:", msg) }

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:           "scholarctl",
		Short:         "Manage research papers, blog posts and teaching experiences",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.out = cmd.OutOrStdout()
			a.err = cmd.ErrOrStderr()
		},
	}
	root.PersistentFlags().String("api", "http://localhost:5001", "API base URL (env SCHOLARFOLIO_API)")
	root.PersistentFlags().String("token", "", "bearer token for write operations (env SCHOLARFOLIO_TOKEN)")
	root.PersistentFlags().Duration("timeout", 2*time.Minute, "overall request timeout")
	_ = a.v.BindPFlag("api", root.PersistentFlags().Lookup("api"))
	_ = a.v.BindPFlag("token", root.PersistentFlags().Lookup("token"))
	_ = a.v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))
	_ = a.v.BindEnv("api", "SCHOLARFOLIO_API")
	_ = a.v.BindEnv("token", "SCHOLARFOLIO_TOKEN")

	root.AddCommand(newPapersCmd(a), newPostsCmd(a), newTeachingCmd(a), newTokenCmd(a))
	return root
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.v.GetDuration("timeout"))
}
