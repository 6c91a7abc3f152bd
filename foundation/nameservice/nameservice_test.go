package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/protochain/foundation/blockchain/wallet"
	"github.com/ardanlabs/protochain/foundation/nameservice"
)

func Test_NameService(t *testing.T) {
	dir := t.TempDir()

	alice, err := wallet.FromPrivateKey("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("Should be able to construct a wallet: %s", err)
	}
	if err := alice.Save(filepath.Join(dir, "alice.ecdsa")); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600); err != nil {
		t.Fatalf("Should be able to write a file: %s", err)
	}

	t.Log("Given the need to name the addresses of known keys.")
	{
		ns, err := nameservice.New(dir)
		if err != nil {
			t.Fatalf("\t✗\tShould be able to load the folder: %s", err)
		}
		t.Logf("\t✓\tShould be able to load the folder.")

		if name := ns.Lookup(alice.PublicKey); name != "alice" {
			t.Fatalf("\t✗\tShould name the address: got %q", name)
		}
		if name := ns.Lookup("0xunknown"); name != "0xunknown" {
			t.Fatalf("\t✗\tShould fall back to the address: got %q", name)
		}
		t.Logf("\t✓\tShould name the addresses.")

		if address, ok := ns.Address("alice"); !ok || address != alice.PublicKey {
			t.Fatalf("\t✗\tShould find the address of a name.")
		}
		t.Logf("\t✓\tShould find the address of a name.")

		if len(ns.Copy()) != 1 {
			t.Fatalf("\t✗\tShould only load key files: %v", ns.Copy())
		}
		t.Logf("\t✓\tShould only load key files.")
	}

	t.Log("Given the need to report a corrupt key file.")
	{
		if err := os.WriteFile(filepath.Join(dir, "bad.ecdsa"), []byte("zz"), 0600); err != nil {
			t.Fatalf("Should be able to write a file: %s", err)
		}

		if _, err := nameservice.New(dir); err == nil {
			t.Fatalf("\t✗\tShould fail on a corrupt key file.")
		}
		t.Logf("\t✓\tShould fail on a corrupt key file.")
	}
}
