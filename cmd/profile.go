package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gstinvoice/internal/invoice"
	"gstinvoice/internal/logger"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the business profile printed on invoices",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the business profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update business profile fields",
	Long: `Update one or more fields of the business profile. Fields without a flag
keep their current value. Invoices already issued keep the seller details
they were created with.

Leaving the GSTIN empty marks the business as unregistered; every invoice
is then treated as intra-state.`,
	Example: `  gstinvoice profile set --name "Sharma Traders" --gstin 27AAAAA0000A1Z5
  gstinvoice profile set --terms "Payment due within 15 days."`,
	Args: cobra.NoArgs,
	RunE: runProfileSet,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd)

	profileShowCmd.Flags().Bool("json", false, "Print as JSON")

	f := profileSetCmd.Flags()
	f.String("name", "", "Business name")
	f.String("address", "", "Postal address")
	f.String("phone", "", "Phone number")
	f.String("email", "", "Contact email")
	f.String("gstin", "", "15-character GSTIN (empty to clear)")
	f.String("logo", "", "Logo image URL")
	f.String("signature", "", "Signature image URL")
	f.String("terms", "", "Terms and conditions")
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		p, err := svc.Profile(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd, p)
		}

		gstin := p.GSTIN
		if gstin == "" {
			gstin = "(not registered)"
		}

		w := newTable(cmd)
		fmt.Fprintf(w, "Name:\t%s\n", p.Name)
		fmt.Fprintf(w, "Address:\t%s\n", p.Address)
		fmt.Fprintf(w, "Phone:\t%s\n", p.Phone)
		fmt.Fprintf(w, "Email:\t%s\n", p.Email)
		fmt.Fprintf(w, "GSTIN:\t%s\n", gstin)
		if p.LogoURL != "" {
			fmt.Fprintf(w, "Logo:\t%s\n", p.LogoURL)
		}
		if p.SignatureURL != "" {
			fmt.Fprintf(w, "Signature:\t%s\n", p.SignatureURL)
		}
		fmt.Fprintf(w, "Terms:\t%s\n", p.Terms)
		return w.Flush()
	})
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("profile")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		p, err := svc.Profile(ctx)
		if err != nil {
			return err
		}

		stringFlags(cmd, map[string]*string{
			"name":      &p.Name,
			"address":   &p.Address,
			"phone":     &p.Phone,
			"email":     &p.Email,
			"gstin":     &p.GSTIN,
			"logo":      &p.LogoURL,
			"signature": &p.SignatureURL,
			"terms":     &p.Terms,
		})

		if err := svc.SaveProfile(ctx, p); err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Business profile saved.")
		return nil
	})
}

// stringFlags copies every flag the user set into its target field.
func stringFlags(cmd *cobra.Command, targets map[string]*string) {
	for name, dst := range targets {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
}
