package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/mkaram/opseckit/auth"
	"github.com/mkaram/opseckit/internal/config"
	"github.com/mkaram/opseckit/internal/identity"
	"github.com/mkaram/opseckit/internal/vault"
)

const cliVersion = "0.1.0"

type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Println(cliVersion)
	case "init":
		err = runInit(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "change-master":
		err = runChangeMaster(os.Args[2:])
	case "identity":
		if len(os.Args) < 3 {
			printIdentityUsage()
			os.Exit(1)
		}
		err = runIdentity(os.Args[2], os.Args[3:])
	default:
		printUsage()
		os.Exit(1)
	}
	handleError(err)
}

func handleError(err error) {
	if err == nil {
		return
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, uerr.Error())
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: opseckit <command> [flags]

commands:
  init            create a new vault
  add             add a credential under an identity
  get             fetch a credential by identity and service
  list            list all credentials (no passwords shown)
  stats           show vault statistics
  export          export the vault to a file
  import          import a vault export
  change-master   change the master passphrase
  identity        manage pseudonymous identities
  version         print the version`)
}

func printIdentityUsage() {
	fmt.Fprintln(os.Stderr, `usage: opseckit identity <create|show|rotate|burn|list|stats> [flags]`)
}

func openSession(dir string) (*vault.Session, error) {
	if dir == "" {
		dir = config.Load("").DataDir
	}
	s := vault.NewSession(dir)
	if !s.Initialized() {
		return nil, userError{"vault not initialized; run 'opseckit init' first"}
	}

	pass, err := promptPassphrase("Master passphrase: ")
	if err != nil {
		return nil, err
	}
	if err := s.Unlock(pass); err != nil {
		if errors.Is(err, vault.ErrInvalidPassphrase) {
			return nil, userError{"invalid master passphrase"}
		}
		return nil, err
	}
	return s, nil
}

func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(raw), nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory (default from config)")
	fs.Parse(args)

	if *dir == "" {
		*dir = config.Load("").DataDir
	}

	s := vault.NewSession(*dir)
	if s.Initialized() {
		return userError{"vault already initialized; use 'change-master' to rotate the passphrase"}
	}

	pass, err := promptPassphrase("New master passphrase: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassphrase("Confirm passphrase: ")
	if err != nil {
		return err
	}
	if pass != confirm {
		return userError{"passphrases do not match"}
	}
	if score := auth.PassphraseScore(pass); score < 3 {
		fmt.Fprintln(os.Stderr, "warning: this passphrase rates as easily guessable; consider a longer one")
	}

	if err := s.Initialize(pass); err != nil {
		if errors.Is(err, auth.ErrWeakSecret) {
			return userError{err.Error()}
		}
		return err
	}
	fmt.Printf("vault initialized at %s\n", *dir)
	return nil
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory")
	identityName := fs.String("identity", "", "identity name (required)")
	service := fs.String("service", "", "service name (required)")
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email")
	notes := fs.String("notes", "", "notes")
	fs.Parse(args)

	if *identityName == "" || *service == "" {
		return userError{"-identity and -service are required"}
	}

	s, err := openSession(*dir)
	if err != nil {
		return err
	}
	defer s.Lock()

	password, err := promptPassphrase("Credential password (empty to skip): ")
	if err != nil {
		return err
	}

	cred, err := s.AddCredential(*identityName, vault.Credential{
		Service:  *service,
		Username: *username,
		Password: password,
		Email:    *email,
		Notes:    *notes,
	})
	if err != nil {
		return err
	}
	fmt.Printf("added credential %s for %s under identity %q\n", cred.ID, cred.Service, *identityName)
	return nil
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory")
	identityName := fs.String("identity", "", "identity name (required)")
	service := fs.String("service", "", "service name (required)")
	fs.Parse(args)

	if *identityName == "" || *service == "" {
		return userError{"-identity and -service are required"}
	}

	s, err := openSession(*dir)
	if err != nil {
		return err
	}
	defer s.Lock()

	cred, err := s.CredentialByService(*identityName, *service)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return userError{fmt.Sprintf("no credential for service %q under identity %q", *service, *identityName)}
		}
		return err
	}

	fmt.Printf("id:       %s\n", cred.ID)
	fmt.Printf("service:  %s\n", cred.Service)
	if cred.Username != "" {
		fmt.Printf("username: %s\n", cred.Username)
	}
	if cred.Email != "" {
		fmt.Printf("email:    %s\n", cred.Email)
	}
	if cred.Password != "" {
		fmt.Printf("password: %s\n", cred.Password)
	}
	if cred.Notes != "" {
		fmt.Printf("notes:    %s\n", cred.Notes)
	}
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory")
	fs.Parse(args)

	s, err := openSession(*dir)
	if err != nil {
		return err
	}
	defer s.Lock()

	summary, err := s.ListAllCredentials()
	if err != nil {
		return err
	}
	for identityName, rows := range summary {
		fmt.Printf("%s:\n", identityName)
		for _, row := range rows {
			fmt.Printf("  %s  %-20s %s\n", row.ID, row.Service, row.Username)
		}
	}
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory")
	fs.Parse(args)

	s, err := openSession(*dir)
	if err != nil {
		return err
	}
	defer s.Lock()

	stats, err := s.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("created:      %s\n", stats.Created.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("version:      %s\n", stats.Version)
	fmt.Printf("identities:   %d\n", stats.TotalIdentities)
	fmt.Printf("credentials:  %d\n", stats.TotalCredentials)
	fmt.Printf("services:     %d %v\n", stats.UniqueServices, stats.Services)
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory")
	out := fs.String("out", "", "output file (required)")
	protect := fs.Bool("protect", false, "encrypt the export under a separate password")
	fs.Parse(args)

	if *out == "" {
		return userError{"-out is required"}
	}

	s, err := openSession(*dir)
	if err != nil {
		return err
	}
	defer s.Lock()

	var exportPassword string
	if *protect {
		exportPassword, err = promptPassphrase("Export password: ")
		if err != nil {
			return err
		}
		if exportPassword == "" {
			return userError{"export password cannot be empty with -protect"}
		}
	}

	if err := s.Export(*out, exportPassword); err != nil {
		return err
	}
	fmt.Printf("vault exported to %s\n", *out)
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory")
	file := fs.String("file", "", "import file (required)")
	merge := fs.Bool("merge", false, "merge into the current vault instead of replacing it")
	protected := fs.Bool("protected", false, "the export carries its own password")
	fs.Parse(args)

	if *file == "" {
		return userError{"-file is required"}
	}

	s, err := openSession(*dir)
	if err != nil {
		return err
	}
	defer s.Lock()

	var importPassword string
	if *protected {
		importPassword, err = promptPassphrase("Import password: ")
		if err != nil {
			return err
		}
	}

	if err := s.Import(*file, importPassword, *merge); err != nil {
		if errors.Is(err, vault.ErrImportFailed) {
			return userError{err.Error()}
		}
		return err
	}
	fmt.Println("vault imported")
	return nil
}

func runChangeMaster(args []string) error {
	fs := flag.NewFlagSet("change-master", flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory")
	fs.Parse(args)

	vaultDir := *dir
	if vaultDir == "" {
		vaultDir = config.Load("").DataDir
	}
	s := vault.NewSession(vaultDir)
	if !s.Initialized() {
		return userError{"vault not initialized"}
	}

	current, err := promptPassphrase("Current master passphrase: ")
	if err != nil {
		return err
	}
	next, err := promptPassphrase("New master passphrase: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassphrase("Confirm new passphrase: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return userError{"passphrases do not match"}
	}

	if err := s.ChangeMasterPassphrase(current, next); err != nil {
		switch {
		case errors.Is(err, vault.ErrInvalidPassphrase):
			return userError{"current passphrase is incorrect"}
		case errors.Is(err, auth.ErrWeakSecret):
			return userError{err.Error()}
		}
		return err
	}
	defer s.Lock()
	fmt.Println("master passphrase changed")
	return nil
}

func openIdentityManager(dir string) (*identity.Manager, error) {
	cfg := config.Load("")
	if dir == "" {
		dir = cfg.DataDir
	}
	logger := log.New(os.Stderr, "", 0)
	store, err := identity.NewStore(vault.NewSession(dir).Paths().IdentitiesPath(), cfg.Identities, logger)
	if err != nil {
		return nil, err
	}
	mgr, err := identity.NewManager(store)
	if err != nil {
		return nil, err
	}
	if mgr.StoreStatus().Mode == identity.EncryptionNone {
		fmt.Fprintln(os.Stderr, "warning: identities store is NOT encrypted; set an identities secret in the config")
	}
	return mgr, nil
}

func runIdentity(sub string, args []string) error {
	fs := flag.NewFlagSet("identity "+sub, flag.ExitOnError)
	dir := fs.String("dir", "", "vault directory")
	name := fs.String("name", "", "identity name")
	purpose := fs.String("purpose", "", "identity purpose")
	keepPassword := fs.Bool("keep-password", false, "rotate alias only, keep the password")
	fs.Parse(args)

	mgr, err := openIdentityManager(*dir)
	if err != nil {
		return err
	}

	switch sub {
	case "create":
		if *name == "" {
			return userError{"-name is required"}
		}
		id, err := mgr.Create(*name, identity.CreateOptions{Purpose: *purpose})
		if err != nil {
			return err
		}
		fmt.Printf("created identity %q: alias=%s email_prefix=%s\n", id.Name, id.Alias, id.EmailPrefix)
	case "show":
		if *name == "" {
			return userError{"-name is required"}
		}
		id, err := mgr.Get(*name, true)
		if err != nil {
			return notFoundErr(err, *name)
		}
		printIdentity(id)
	case "rotate":
		if *name == "" {
			return userError{"-name is required"}
		}
		id, err := mgr.Rotate(*name, !*keepPassword)
		if err != nil {
			return notFoundErr(err, *name)
		}
		fmt.Printf("rotated identity %q: alias=%s (%d previous)\n", id.Name, id.Alias, len(id.PreviousAliases))
	case "burn":
		if *name == "" {
			return userError{"-name is required"}
		}
		if err := mgr.Burn(*name); err != nil {
			return notFoundErr(err, *name)
		}
		fmt.Printf("burned identity %q\n", *name)
	case "list":
		for _, n := range mgr.List() {
			fmt.Println(n)
		}
	case "stats":
		stats := mgr.Stats()
		fmt.Printf("identities: %d, total uses: %d\n", stats.Total, stats.TotalUses)
		for n, s := range stats.Identities {
			fmt.Printf("  %-20s uses=%d password=%v passphrase=%v\n", n, s.UseCount, s.HasPassword, s.HasPassphrase)
		}
	default:
		printIdentityUsage()
		os.Exit(1)
	}
	return nil
}

func notFoundErr(err error, name string) error {
	if errors.Is(err, identity.ErrNotFound) {
		return userError{fmt.Sprintf("identity %q not found", name)}
	}
	return err
}

func printIdentity(id *identity.Identity) {
	fmt.Printf("name:         %s\n", id.Name)
	fmt.Printf("alias:        %s\n", id.Alias)
	fmt.Printf("email prefix: %s\n", id.EmailPrefix)
	if id.Purpose != "" {
		fmt.Printf("purpose:      %s\n", id.Purpose)
	}
	fmt.Printf("use count:    %d\n", id.UseCount)
	if id.Password != "" {
		fmt.Printf("password:     %s\n", id.Password)
		if id.PasswordStrength != nil {
			fmt.Printf("strength:     %s (%.1f bits)\n", id.PasswordStrength.Rating, id.PasswordStrength.EntropyBits)
		}
	}
	if id.Passphrase != "" {
		fmt.Printf("passphrase:   %s\n", id.Passphrase)
	}
	if len(id.PreviousAliases) > 0 {
		fmt.Printf("prev aliases: %v\n", id.PreviousAliases)
	}
}
