// Command mrbtctl is a small demonstrator for the mrbt library,
// grounded on the CLI surfaces dedis-dela and bluesky-social-indigo
// expose for their own stores: a single urfave/cli/v2 app driving an
// in-memory tree from a line-oriented script of operations, since
// mrbt itself carries no persistence layer to front with a long-lived
// daemon (see DESIGN.md).
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/Tsekho/mrbt"
)

func main() {
	app := &cli.App{
		Name:  "mrbtctl",
		Usage: "drive an in-memory authenticated ordered map from a script of operations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "hash", Value: mrbt.SHA256, Usage: "sha1|sha224|sha256|sha384|sha512|blake2b|blake2s|blake3"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable debug-level mutation logging"},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "execute a script of operations, one per line",
				ArgsUsage: "[script-file, or - for stdin]",
				Action:    runScript,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mrbtctl:", err)
		os.Exit(1)
	}
}

// runScript interprets one operation per line:
//
//	insert <key> <value>   set <key> <value>   delete <key>
//	get <key>               verify <key>
//	digest                  dump                selftest
//	diff <other-script-file>
//
// Blank lines and lines starting with "#" are ignored.
func runScript(c *cli.Context) error {
	hasher, err := mrbt.NewHasher(c.String("hash"))
	if err != nil {
		return err
	}
	var opts []mrbt.Option
	if c.Bool("verbose") {
		opts = append(opts, mrbt.WithLogger(zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()))
	}
	t := mrbt.New(hasher, opts...)

	src := os.Stdin
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	return interpret(c.App.Writer, t, src)
}

// loadTree builds a fresh Tree under the same hasher as t by replaying
// a second script file, for the "diff" operation to compare against.
func loadTree(hasher mrbt.Hasher, path string) (*mrbt.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t := mrbt.New(hasher)
	if err := interpret(io.Discard, t, f); err != nil {
		return nil, err
	}
	return t, nil
}

func interpret(w io.Writer, t *mrbt.Tree, src io.Reader) error {
	scanner := bufio.NewScanner(src)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if err := execLine(w, t, fields); err != nil {
			return fmt.Errorf("line %d: %q: %w", lineNo, line, err)
		}
	}
	return scanner.Err()
}

func execLine(w io.Writer, t *mrbt.Tree, fields []string) error {
	switch fields[0] {
	case "insert":
		k, v, err := parseKV(fields)
		if err != nil {
			return err
		}
		ok := t.Insert(k, v)
		fmt.Fprintf(w, "insert %s: %v\n", fields[1], ok)
	case "set":
		k, v, err := parseKV(fields)
		if err != nil {
			return err
		}
		t.Set(k, v)
		fmt.Fprintf(w, "set %s\n", fields[1])
	case "delete":
		k, err := parseKey(fields)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "delete %s: %v\n", fields[1], t.Delete(k))
	case "get":
		k, err := parseKey(fields)
		if err != nil {
			return err
		}
		v, ok := t.Get(k)
		fmt.Fprintf(w, "get %s: found=%v value=%s\n", fields[1], ok, string(v))
	case "verify":
		k, err := parseKey(fields)
		if err != nil {
			return err
		}
		v, vo, ok := t.GetVerified(k)
		root := t.Digest()
		valid, found, verr := mrbt.Verify(root, t.Hasher(), vo)
		fmt.Fprintf(w, "verify %s: found=%v value=%s voValid=%v voFound=%v verifyErr=%v\n",
			fields[1], ok, string(v), valid, found, verr)
	case "digest":
		d := t.Digest()
		fmt.Fprintf(w, "digest: left=%s right=%s\n", hex.EncodeToString(d.Left), hex.EncodeToString(d.Right))
	case "dump":
		fmt.Fprint(w, t.String())
	case "selftest":
		fmt.Fprintf(w, "selftest: %v\n", t.SelfTest())
	case "diff":
		if len(fields) < 2 {
			return fmt.Errorf("expected a script-file argument")
		}
		other, err := loadTree(t.Hasher(), fields[1])
		if err != nil {
			return err
		}
		for _, c := range t.GetChangeSet(other) {
			fmt.Fprintf(w, "diff %v: %s\n", c.Key, c.Origin)
		}
	default:
		return fmt.Errorf("unknown operation %q", fields[0])
	}
	return nil
}

func parseKey(fields []string) (mrbt.IntKey, error) {
	if len(fields) < 2 {
		return mrbt.IntKey{}, fmt.Errorf("expected a key argument")
	}
	var n int64
	if _, err := fmt.Sscanf(fields[1], "%d", &n); err != nil {
		return mrbt.IntKey{}, fmt.Errorf("invalid integer key %q: %w", fields[1], err)
	}
	return mrbt.Int(n), nil
}

func parseKV(fields []string) (mrbt.IntKey, []byte, error) {
	if len(fields) < 3 {
		return mrbt.IntKey{}, nil, fmt.Errorf("expected key and value arguments")
	}
	k, err := parseKey(fields)
	if err != nil {
		return mrbt.IntKey{}, nil, err
	}
	return k, []byte(strings.Join(fields[2:], " ")), nil
}
