package main

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/scholarfolio/backend/internal/client"
	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/form"
	"github.com/scholarfolio/backend/internal/upload"
	"github.com/spf13/cobra"
)

// flagName turns a field name such as publishedAt into published-at.
func flagName(field string) string {
	var b strings.Builder
	for _, r := range field {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// resourceCmd builds the list/get/delete/add/edit subcommands shared by
// every content type.
func resourceCmd[T content.Record, I any](a *app, use, short string, kind form.Kind[T, I], res func(*client.Client) *client.Resource[T, I]) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			list, err := res(a.client()).List(ctx)
			if err != nil {
				return err
			}
			return a.printJSON(list)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			rec, err := res(a.client()).Get(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printJSON(rec)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := res(a.client()).Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "deleted", args[0])
			return nil
		},
	})

	cmd.AddCommand(editCmd(a, "add", "Create a record", kind, res))
	cmd.AddCommand(editCmd(a, "edit <id>", "Update a record; unset flags keep their value", kind, res))
	return cmd
}

func editCmd[T content.Record, I any](a *app, use, short string, kind form.Kind[T, I], res func(*client.Client) *client.Resource[T, I]) *cobra.Command {
	editing := strings.HasPrefix(use, "edit")
	var attachment string
	cmd := &cobra.Command{Use: use, Short: short, Args: cobra.NoArgs}
	if editing {
		cmd.Args = cobra.ExactArgs(1)
	}
	for _, f := range kind.Fields {
		cmd.Flags().String(flagName(f), "", f)
	}
	if kind.Attachment != nil {
		cmd.Flags().StringVar(&attachment, "pdf", "", "file to upload as the attachment")
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := a.context(cmd)
		defer cancel()
		c := a.client()
		r := res(c)

		var existing *T
		if editing {
			rec, err := r.Get(ctx, args[0])
			if err != nil {
				return err
			}
			existing = &rec
		}
		e := form.NewEditor(kind, existing, form.Deps[T, I]{Saver: r, Uploader: c, Notifier: a})
		defer e.Close()

		for _, f := range kind.Fields {
			fl := cmd.Flags().Lookup(flagName(f))
			if fl.Changed {
				if err := e.Set(f, fl.Value.String()); err != nil {
					return err
				}
			}
		}
		if attachment != "" {
			file, err := os.Open(attachment)
			if err != nil {
				return err
			}
			defer file.Close()
			st, err := file.Stat()
			if err != nil {
				return err
			}
			before := e.Field(kind.Attachment.Field)
			if err := e.Upload(ctx, upload.File{Name: st.Name(), Size: st.Size(), Body: file}); err != nil {
				return err
			}
			// rejections are reported through the notifier only
			if e.Field(kind.Attachment.Field) == before {
				return fmt.Errorf("attachment %s was not uploaded", attachment)
			}
		}
		if err := e.Submit(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, e.ID())
		return nil
	}
	return cmd
}

func newPapersCmd(a *app) *cobra.Command {
	return resourceCmd(a, "papers", "Manage research papers", form.PaperKind, (*client.Client).Papers)
}

func newPostsCmd(a *app) *cobra.Command {
	return resourceCmd(a, "posts", "Manage blog posts", form.PostKind, (*client.Client).Posts)
}

func newTeachingCmd(a *app) *cobra.Command {
	return resourceCmd(a, "teaching", "Manage teaching experiences", form.TeachingKind, (*client.Client).Teaching)
}
