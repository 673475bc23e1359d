package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"pcadmin/core/dnszone"
	"pcadmin/core/inventory"
	"pcadmin/core/metrics"
	"pcadmin/feature/dnssync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var yesConfirm bool

// dnsCmd is the parent command for DNS operations.
var dnsCmd = &cobra.Command{
	Use:   "dns",
	Short: "Manage the DNS records of the VM inventory",
}

// dnsSyncCmd reconciles forward and reverse records with the inventory.
var dnsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile A and PTR records with the VM inventory",
	Long: `Reconcile the forward (A) and reverse (PTR) records of every VM that
reports a host name and an IPv4 address through its guest tools.

Existing records under an inventory host's name are replaced; records of
other names are never touched. Each zone is updated in a single batch.

Examples:
  # Show the planned changes
  dns sync --forward-domain multicloud.internal --reverse-domain 10.in-addr.arpa --dry-run --show-details

  # Apply
  dns sync --forward-domain multicloud.internal --reverse-domain 10.in-addr.arpa

  # Remove the records of every inventory host, without confirmation
  dns sync --purge-only --yes`,
	RunE: runDNSSync,
}

func init() {
	flags := dnsSyncCmd.Flags()
	flags.String("forward-domain", "", "Forward zone receiving the A records")
	flags.String("reverse-domain", "", "Reverse zone receiving the PTR records")
	flags.Int("ttl", 0, "TTL of created records in seconds (default 301)")
	flags.Bool("purge-only", false, "Only remove the records of inventory hosts")
	flags.Bool("show-details", false, "Log every planned record change")
	flags.Bool("dry-run", false, "Compute the changes without applying them")
	flags.Bool("replace-unchanged", false, "Remove and re-add records that already hold the desired data")
	flags.Bool("powered-on-only", false, "Ignore VMs that are not powered on")
	flags.BoolVar(&yesConfirm, "yes", false, "Auto-confirm --purge-only (non-interactive)")

	_ = dnsSyncCmd.RegisterFlagCompletionFunc("forward-domain", completeDomain(func(c dnssync.Config) string { return c.ForwardDomain }))
	_ = dnsSyncCmd.RegisterFlagCompletionFunc("reverse-domain", completeDomain(func(c dnssync.Config) string { return c.ReverseDomain }))

	dnsCmd.AddCommand(dnsSyncCmd)
	RootCmd.AddCommand(dnsCmd)
}

func applyDNSFlags(cmd *cobra.Command, cfg *dnssync.Config) {
	flags := cmd.Flags()
	overrideString(flags, "forward-domain", &cfg.ForwardDomain)
	overrideString(flags, "reverse-domain", &cfg.ReverseDomain)
	overrideInt(flags, "ttl", &cfg.TTL)
	overrideBool(flags, "purge-only", &cfg.PurgeOnly)
	overrideBool(flags, "show-details", &cfg.ShowDetails)
	overrideBool(flags, "dry-run", &cfg.DryRun)
	overrideBool(flags, "replace-unchanged", &cfg.ReplaceUnchanged)
	overrideBool(flags, "powered-on-only", &cfg.PoweredOnOnly)
}

func runDNSSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()

	applyDNSFlags(cmd, &cfg.DNS)
	if cfg.DNS.ForwardDomain == "" || cfg.DNS.ReverseDomain == "" {
		return fmt.Errorf("both --forward-domain and --reverse-domain are required")
	}

	opts := cfg.DNS.Options()
	if opts.Mode == dnssync.ModePurgeOnly && !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	m := metrics.New(cfg.Metrics)
	defer pushMetrics(ctx, m, l)

	provider, err := dnszone.NewProvider(cfg.DNS.ProviderConfig())
	if err != nil {
		return err
	}

	sess, closeSession, err := connectVSphere(ctx, cfg.VSphere, l)
	if err != nil {
		return err
	}
	defer closeSession()

	source := inventory.NewVSphere(sess.Vim(), inventory.PoweredOnOnly(cfg.DNS.PoweredOnOnly))

	l.Info("Starting DNS sync",
		zap.String("provider", cfg.DNS.Provider),
		zap.String("forward_domain", opts.ForwardDomain),
		zap.String("reverse_domain", opts.ReverseDomain),
		zap.Stringer("mode", opts.Mode))

	svc := dnssync.NewService(source, dnszone.Instrument(provider, m), m, openRecorder(cfg.Database, l), l)
	res, err := svc.Sync(ctx, opts)
	if res != nil && (err == nil || res.Err() != nil) {
		printDNSReport(l, res)
	}
	return err
}

// printDNSReport logs the outcome of a DNS sync, one line per zone.
func printDNSReport(l *zap.Logger, res *dnssync.Result) {
	for _, z := range []dnssync.ZoneResult{res.Forward, res.Reverse} {
		s := z.Summary()
		fields := []zap.Field{
			zap.String("zone", z.Zone),
			zap.Int("add", s.Add),
			zap.Int("remove", s.Remove),
			zap.Int("unchanged", s.Unchanged),
			zap.Bool("applied", z.Applied),
		}
		if z.Err != nil {
			l.Error("Zone update failed", append(fields, zap.Error(z.Err))...)
			continue
		}
		l.Info("Zone report", fields...)
	}
	if len(res.Dropped) > 0 {
		l.Info("Inventory entries without records", zap.Int("count", len(res.Dropped)))
	}
}

// completeDomain offers the configured domain as the completion.
func completeDomain(pick func(dnssync.Config) string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, _, err := setup()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []string
		if d := pick(cfg.DNS); d != "" && strings.HasPrefix(d, toComplete) {
			out = append(out, d)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Purge-only removes the DNS records of every inventory host. Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
