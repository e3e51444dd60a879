package labctl

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Run dispatches every non-interactive subcommand. The `setup` wizard is
// started from main to keep this package free of TUI imports.
func Run(args []string) error {
	if len(args) < 1 {
		Usage()
		return errors.New("no command given")
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "detect":
		return cmdDetect()
	case "provision":
		return cmdProvision(cmdArgs)
	case "enable":
		return cmdEnableDisable(cmdArgs, true)
	case "disable":
		return cmdEnableDisable(cmdArgs, false)
	case "status":
		return cmdStatus()
	case "apply":
		return cmdApply()
	case "backup":
		return runBackup(LoadPaths())
	case "doctor":
		return RunDoctor(LoadPaths())
	case "help", "--help", "-h":
		Usage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func Usage() {
	fmt.Println(`labctl - bootstrap a homelab observability and media stack

Usage:
  labctl setup                 # interactive setup wizard
  labctl detect                # print detected host facts
  labctl provision [username]  # converge service directories (needs root)
  labctl enable <service>
  labctl disable <service>
  labctl apply                 # regenerate compose.yml and docker compose up
  labctl status
  labctl backup                # archive configuration to the backup root
  labctl doctor

Available services:`)

	for _, name := range SortedServiceNames() {
		s := ServiceCatalog[name]
		fmt.Printf("  - %-20s %-42s ports: %s\n", s.Name, s.Description, servicePorts(name))
	}
}

func cmdDetect() error {
	facts := DetectHostFacts()

	fmt.Printf("interface:        %s\n", orUnknown(facts.Interface))
	fmt.Printf("server ip:        %s\n", orUnknown(facts.ServerIP))
	fmt.Printf("puid:pgid:        %s:%s\n", facts.PUID, facts.PGID)
	fmt.Printf("timezone:         %s\n", facts.Timezone)
	fmt.Printf("docker:           %s\n", orUnknown(facts.DockerVersion))
	fmt.Printf("compose plugin:   %s\n", orUnknown(facts.ComposeVersion))

	if !facts.RuntimePresent() {
		fmt.Println("\nwarning: no container runtime detected; setup will refuse to run")
	}
	return nil
}

func orUnknown(v string) string {
	if v == "" {
		return "(not detected)"
	}
	return v
}

func cmdProvision(args []string) error {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	username := ""
	if fs.NArg() > 0 {
		username = fs.Arg(0)
	}

	facts := DetectHostFacts()
	owner, err := ResolveOwner(facts, username)
	if err != nil {
		return err
	}
	if err := CheckPrivilege(DirectorySpecs, owner); err != nil {
		return err
	}

	paths := LoadPaths()
	report := Provision(paths, DirectorySpecs, owner)
	printReport(report)

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d directories failed: %w",
			len(failed), len(report.Results), failed[0].Err)
	}
	return nil
}

func printReport(report ProvisionReport) {
	for _, res := range report.Results {
		switch res.Outcome {
		case OutcomeFailed:
			fmt.Printf("[FAIL] %-32s %v\n", res.Path, res.Err)
		default:
			fmt.Printf("[%-9s] %s\n", res.Outcome, res.Path)
		}
	}
	fmt.Printf("created %d, fixed %d, unchanged %d, failed %d\n",
		report.Count(OutcomeCreated), report.Count(OutcomeFixed),
		report.Count(OutcomeUnchanged), report.Count(OutcomeFailed))
}

func cmdEnableDisable(args []string, enable bool) error {
	if len(args) == 0 {
		return errors.New("service name is required")
	}
	service := args[0]
	if _, ok := ServiceCatalog[service]; !ok {
		return fmt.Errorf("unknown service: %s", service)
	}

	paths := LoadPaths()
	current, err := LoadEnabled(paths)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		current = EnabledConfig{}
	}

	changed := false
	if enable {
		if !contains(current.Services, service) {
			current.Services = append(current.Services, service)
			changed = true
		}
	} else {
		filtered := make([]string, 0, len(current.Services))
		for _, item := range current.Services {
			if item != service {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) != len(current.Services) {
			current.Services = filtered
			changed = true
		}
	}

	sort.Strings(current.Services)
	if err := WriteEnabled(paths, current); err != nil {
		return err
	}

	verb := "already disabled"
	if enable {
		verb = "already enabled"
	}
	if changed {
		if enable {
			verb = "enabled"
		} else {
			verb = "disabled"
		}
	}

	fmt.Printf("%s %s\n", service, verb)
	fmt.Println("run: labctl apply")
	return nil
}

func cmdStatus() error {
	paths := LoadPaths()
	services, err := LoadEnabledServices(paths)
	if err != nil {
		return err
	}

	fmt.Printf("stack root: %s\n", paths.StackRoot)

	if _, err := os.Stat(filepath.Join(paths.StackRoot, "compose.yml")); err != nil {
		fmt.Printf("enabled services: %s\n", strings.Join(services, ", "))
		fmt.Println("no compose.yml yet; run labctl setup or labctl apply")
		return nil
	}

	for _, service := range services {
		state := "stopped"
		switch {
		case !ComposeServiceExists(paths, service):
			state = "not in manifest; run labctl apply"
		case ComposeServiceRunning(paths, service):
			state = "running"
		}
		fmt.Printf("  %-22s %s\n", service, state)
	}
	return nil
}

func cmdApply() error {
	facts := DetectHostFacts()
	if !facts.RuntimePresent() {
		return ErrRuntimeMissing
	}

	paths := LoadPaths()
	services, err := LoadEnabledServices(paths)
	if err != nil {
		return err
	}

	if err := WriteComposeFile(paths, services); err != nil {
		return err
	}
	if err := EnsureComposeOverride(paths); err != nil {
		return err
	}

	composeArgs := ComposeBaseArgs(paths)
	composeArgs = append(composeArgs, "up", "-d", "--remove-orphans")
	if err := runCmdStream("docker", composeArgs...); err != nil {
		return err
	}

	fmt.Printf("applied stack with services: %s\n", strings.Join(services, ", "))
	return nil
}
