package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})

	if err := root.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"migrate", "seed", "sweep-overdue", "create-user"} {
		if !strings.Contains(out.String(), name) {
			t.Fatalf("help output missing %q:\n%s", name, out.String())
		}
	}
}

func TestCreateUserRequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"create-user", "--email", "a@b.com"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected missing --name error, got %v", err)
	}
}

func TestMemoryStoreIsRejected(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("APP_MODE", "dev")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"sweep-overdue"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "memory://") {
		t.Fatalf("expected memory store to be rejected, got %v", err)
	}
}

func TestReadPasswordKeepsSpaces(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(" correct horse battery \r\nsecond line"))
	in := bufio.NewReader(cmd.InOrStdin())

	first, err := readPassword(cmd, in, "Password: ")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if first != " correct horse battery " {
		t.Fatalf("expected spaces preserved, got %q", first)
	}

	// the last line may end without a newline
	second, err := readPassword(cmd, in, "Confirm password: ")
	if err != nil || second != "second line" {
		t.Fatalf("expected %q, got %q (%v)", "second line", second, err)
	}

	if _, err := readPassword(cmd, in, "Password: "); err == nil {
		t.Fatalf("expected an error once input is exhausted")
	}
}
