package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prismstudio/certverify/pkg/certid"
	"github.com/prismstudio/certverify/pkg/constants"
)

func newIDCommand() *cobra.Command {
	idCmd := &cobra.Command{
		Use:   "id",
		Short: "Inspect certificate identifiers",
	}

	validateCmd := &cobra.Command{
		Use:   "validate ID...",
		Short: "Check identifiers against the format and component ranges",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, id := range args {
				c, ok := certid.Parse(id)
				if !ok {
					invalid++
					fmt.Fprintf(out, "%s\tinvalid\t%s\n", id, constants.CertificateIDFormatHint)
					continue
				}
				if err := c.Validate(); err != nil {
					invalid++
					fmt.Fprintf(out, "%s\tinvalid\t%v\n", id, err)
					continue
				}
				fmt.Fprintf(out, "%s\tvalid\n", id)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d identifiers are invalid", invalid, len(args))
			}
			return nil
		},
	}

	parseCmd := &cobra.Command{
		Use:   "parse ID",
		Short: "Decode an identifier into its components",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := certid.Parse(args[0])
			if !ok {
				return fmt.Errorf("cannot parse %q", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "year:     %d\n", c.Year)
			fmt.Fprintf(out, "month:    %02d\n", c.Month)
			fmt.Fprintf(out, "domain:   %s (%s)\n", c.Domain, certid.DomainName(c.Domain))
			fmt.Fprintf(out, "sequence: %03d\n", c.Sequence)
			return nil
		},
	}

	var year, month, sequence int
	var domain string
	formatCmd := &cobra.Command{
		Use:   "format",
		Short: "Encode components into an identifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := certid.Format(certid.Components{
				Year:     year,
				Month:    month,
				Domain:   strings.ToUpper(domain),
				Sequence: sequence,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	formatCmd.Flags().IntVar(&year, "year", 0, "four-digit year")
	formatCmd.Flags().IntVar(&month, "month", 0, "month (1-12)")
	formatCmd.Flags().StringVar(&domain, "domain", "", "domain code, e.g. DS")
	formatCmd.Flags().IntVar(&sequence, "seq", 0, "sequence number (1-999)")
	_ = formatCmd.MarkFlagRequired("year")
	_ = formatCmd.MarkFlagRequired("month")
	_ = formatCmd.MarkFlagRequired("domain")
	_ = formatCmd.MarkFlagRequired("seq")

	sortCmd := &cobra.Command{
		Use:   "sort ID...",
		Short: "Print identifiers in chronological order",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range certid.Sort(args) {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
		},
	}

	labelCmd := &cobra.Command{
		Use:   "label ID",
		Short: "Print the cohort label of an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, ok := certid.CohortLabel(args[0])
			if !ok {
				return fmt.Errorf("cannot parse %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}

	idCmd.AddCommand(validateCmd, parseCmd, formatCmd, sortCmd, labelCmd)
	return idCmd
}

//Personal.AI order the ending
