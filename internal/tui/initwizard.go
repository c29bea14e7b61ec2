package tui

import (
	"errors"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"

	"nathanbeddoewebdev/vultrdyn/internal/config"
	"nathanbeddoewebdev/vultrdyn/internal/dns/domain"
)

// ErrInitAborted is returned when the user cancels the setup wizard.
var ErrInitAborted = errors.New("setup wizard aborted by user")

// InitWizard walks the user through a first configuration interactively and
// returns the resulting config. The API key is entered masked and is stored
// in the config file itself; users who prefer the OS keyring can leave it
// blank and run 'auth login' afterwards.
func InitWizard() (*config.Config, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	var (
		apiKey     string
		domainName string
		subdomain  string
		recordType = string(domain.RecordTypeA)
		ttl        = "300"
		interval   = "300"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Vultr API key").
				Description("Leave blank to use the OS keyring ('auth login').").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Domain").
				Placeholder("example.com").
				Validate(requireValue("domain is required")).
				Value(&domainName),
			huh.NewInput().
				Title("Subdomain").
				Description("Leave blank for the root record.").
				Value(&subdomain),
			huh.NewSelect[string]().
				Title("Record type").
				Options(
					huh.NewOption("A (IPv4)", string(domain.RecordTypeA)),
					huh.NewOption("AAAA (IPv6)", string(domain.RecordTypeAAAA)),
				).
				Value(&recordType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("TTL for new records (seconds)").
				Validate(requirePositiveInt("TTL")).
				Value(&ttl),
			huh.NewInput().
				Title("Check interval (seconds)").
				Validate(requirePositiveInt("check interval")).
				Value(&interval),
		),
	).WithAccessible(accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrInitAborted
		}
		return nil, err
	}

	ttlVal, _ := strconv.Atoi(ttl)
	intervalVal, _ := strconv.Atoi(interval)

	cfg := &config.Config{
		APIKey:        apiKey,
		CheckInterval: intervalVal,
		Targets: []domain.Target{{
			Domain:     domainName,
			Subdomain:  subdomain,
			RecordType: domain.RecordType(recordType),
			TTL:        ttlVal,
		}},
	}
	return cfg, nil
}

func requireValue(msg string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func requirePositiveInt(name string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return errors.New(name + " must be a positive number")
		}
		return nil
	}
}
