package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gstinvoice/internal/invoice"
	"gstinvoice/internal/logger"
	"gstinvoice/pkg/models"
)

var clientCmd = &cobra.Command{
	Use:     "client",
	Aliases: []string{"clients"},
	Short:   "Manage the client list",
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	Args:  cobra.NoArgs,
	RunE:  runClientList,
}

var clientAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a client",
	Example: `  gstinvoice client add --name "Blue Mart" --phone 9876500000 --gstin 29BBBBB1111B2Z6`,
	Args:    cobra.NoArgs,
	RunE:    runClientAdd,
}

var clientEditCmd = &cobra.Command{
	Use:   "edit <client-id>",
	Short: "Change fields of a client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientEdit,
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <client-id>",
	Short: "Delete a client; issued invoices keep their copy",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientDelete,
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientListCmd, clientAddCmd, clientEditCmd, clientDeleteCmd)

	clientListCmd.Flags().Bool("json", false, "Print as JSON")
	for _, c := range []*cobra.Command{clientAddCmd, clientEditCmd} {
		addClientFlags(c, "")
	}
	clientAddCmd.MarkFlagRequired("name")
	clientDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// addClientFlags registers the client field flags under an optional prefix.
func addClientFlags(cmd *cobra.Command, prefix string) {
	f := cmd.Flags()
	f.String(prefix+"name", "", "Client name")
	f.String(prefix+"address", "", "Postal address")
	f.String(prefix+"phone", "", "Phone number")
	f.String(prefix+"email", "", "Email")
	f.String(prefix+"gstin", "", "15-character GSTIN; leave empty for unregistered buyers")
}

// clientFromFlags applies the set client flags to c.
func clientFromFlags(cmd *cobra.Command, prefix string, c *models.Client) {
	stringFlags(cmd, map[string]*string{
		prefix + "name":    &c.Name,
		prefix + "address": &c.Address,
		prefix + "phone":   &c.Phone,
		prefix + "email":   &c.Email,
		prefix + "gstin":   &c.GSTIN,
	})
}

func runClientList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		clients, err := svc.Clients(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd, clients)
		}
		if len(clients) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No clients yet. Add one with: gstinvoice client add --name ...")
			return nil
		}

		w := newTable(cmd)
		fmt.Fprintln(w, "ID\tNAME\tPHONE\tGSTIN")
		for _, c := range clients {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Phone, c.GSTIN)
		}
		return w.Flush()
	})
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("client")

	var c models.Client
	clientFromFlags(cmd, "", &c)

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		saved, err := svc.SaveClient(ctx, c)
		if err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Client %s saved (%s).\n", saved.Name, saved.ID)
		return nil
	})
}

func runClientEdit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("client")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		c, err := svc.Client(ctx, args[0])
		if err != nil {
			return handleInvoiceError(err, log)
		}
		clientFromFlags(cmd, "", &c)

		if _, err := svc.SaveClient(ctx, c); err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Client %s updated.\n", c.Name)
		return nil
	})
}

func runClientDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("client")
	yes, _ := cmd.Flags().GetBool("yes")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		c, err := svc.Client(ctx, args[0])
		if err != nil {
			return handleInvoiceError(err, log)
		}
		if !confirm(cmd, fmt.Sprintf("Delete client %s?", c.Name), yes) {
			return errors.New("aborted")
		}
		if err := svc.DeleteClient(ctx, c.ID); err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Client %s deleted.\n", c.Name)
		return nil
	})
}
