// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reaction-engine/internal/cite"
	"github.com/pdiddy/reaction-engine/pkg/types"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Manage literature references",
}

var refsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Check unresolved DOIs against the doi.org resolver",
	Long: `Resolve issues a HEAD request to doi.org for every reference whose DOI
has not been checked yet and records whether it resolves. Rate-limit
responses are retried with backoff; a transport failure leaves the
reference's status untouched for a later run.`,
	RunE: runRefsResolve,
}

func runRefsResolve(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	userAgent, _ := cmd.Flags().GetString("user-agent")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	refs, err := st.ReferencesNeedingResolution(cmd.Context())
	if err != nil {
		return err
	}
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	if len(refs) == 0 {
		fmt.Println("No references need resolution.")
		return nil
	}

	client := &http.Client{Timeout: timeout}
	httpCfg := types.HTTPConfig{Timeout: timeout, UserAgent: userAgent}

	resolved, failed := 0, 0
	for _, ref := range refs {
		status, err := cite.ResolveDOI(cmd.Context(), client, httpCfg, ref.DOI)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "resolve %s: %v\n", ref.DOI, err)
			continue
		}
		if err := st.SetReferenceDOIStatus(cmd.Context(), ref.ID, status); err != nil {
			return err
		}
		if status == types.DOIResolved {
			resolved++
		}
		fmt.Printf("%s: %s\n", ref.DOI, status)
	}

	fmt.Printf("\n%d checked, %d resolved, %d transport failure(s)\n",
		len(refs)-failed, resolved, failed)
	return nil
}

func init() {
	refsResolveCmd.Flags().Int("limit", 0, "maximum references to check (0 = all)")
	refsResolveCmd.Flags().Duration("timeout", 15*time.Second, "HTTP request timeout")
	refsResolveCmd.Flags().String("user-agent", "reaction-engine/"+version, "User-Agent header for resolver requests")

	refsCmd.AddCommand(refsResolveCmd)
	rootCmd.AddCommand(refsCmd)
}
