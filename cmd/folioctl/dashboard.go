package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/folio/backend/pkg/client"
)

// sessionHint turns an expired-session error into an actionable message.
func sessionHint(err error) error {
	if errors.Is(err, client.ErrSessionExpired) {
		return errors.New("admin session expired or missing; run `folioctl login`")
	}
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API and its database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", h.Status, h.Message)
			if h.Status != "ok" {
				return errors.New("service unhealthy")
			}
			return nil
		},
	}
}

func (a *app) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage contact submissions",
	}

	var filter client.ContactFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List contact submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			contacts, err := c.ListContacts(cmd.Context(), filter)
			if err != nil {
				return sessionHint(err)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tSUBMITTED\tSTATUS\tNAME\tEMAIL\tSERVICE")
			for _, ct := range contacts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					ct.ID, ct.SubmittedAt.Local().Format(time.DateOnly), ct.Status, ct.Name, ct.Email, ct.Service)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&filter.Status, "status", "", "filter by status (new, contacted, in-progress, completed, archived)")
	list.Flags().IntVar(&filter.Limit, "limit", 0, "maximum rows (server default 50)")
	list.Flags().IntVar(&filter.Offset, "offset", 0, "rows to skip")

	var notes string
	setStatus := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change a submission's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			status := args[1]
			var notesPtr *string
			if cmd.Flags().Changed("notes") {
				notesPtr = &notes
			}
			ct, err := c.UpdateContact(cmd.Context(), args[0], &status, notesPtr)
			if err != nil {
				return sessionHint(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Contact %s is now %s.\n", ct.ID, ct.Status)
			return nil
		},
	}
	setStatus.Flags().StringVar(&notes, "notes", "", "replace the admin notes")

	cmd.AddCommand(list, setStatus)
	return cmd
}

func (a *app) subscribersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "Manage newsletter subscribers",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			subs, err := c.ListSubscribers(cmd.Context(), status)
			if err != nil {
				return sessionHint(err)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tSTATUS\tSUBSCRIBED")
			for _, s := range subs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Email, s.Name, s.Status, s.SubscribedAt.Local().Format(time.DateOnly))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d subscriber(s)\n", len(subs))
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status (active, unsubscribed)")

	remove := &cobra.Command{
		Use:   "unsubscribe <id>",
		Short: "Mark a subscriber as unsubscribed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := c.Unsubscribe(cmd.Context(), args[0]); err != nil {
				return sessionHint(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subscriber %s unsubscribed.\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, remove)
	return cmd
}

func (a *app) newsletterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Send and review newsletters",
	}

	var (
		draft client.NewsletterDraft
		yes   bool
	)
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a newsletter to every active subscriber",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.ValidateNewsletter(draft); err != nil {
				return err
			}
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if !yes && !a.confirm(fmt.Sprintf("Send %q to all active subscribers", draft.Subject)) {
				return errors.New("aborted")
			}
			n, err := c.SendNewsletter(cmd.Context(), draft)
			if err != nil {
				return sessionHint(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Newsletter %s: %d sent, %d failed (%s).\n",
				n.ID, n.SuccessCount, n.FailCount, n.Status)
			if n.Status == "failed" {
				return errors.New("newsletter delivery failed")
			}
			return nil
		},
	}
	send.Flags().StringVar(&draft.Subject, "subject", "", "subject line")
	send.Flags().StringVar(&draft.Content, "content", "", "HTML body")
	send.Flags().StringVar(&draft.PreviewText, "preview", "", "inbox preview text")
	send.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	list := &cobra.Command{
		Use:   "list",
		Short: "List sent newsletters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			letters, err := c.ListNewsletters(cmd.Context())
			if err != nil {
				return sessionHint(err)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SENT\tSTATUS\tRECIPIENTS\tDELIVERED\tSUBJECT")
			for _, n := range letters {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					n.SentAt.Local().Format(time.DateTime), n.Status, n.SubscriberCount, n.SuccessCount, n.Subject)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(send, list)
	return cmd
}
