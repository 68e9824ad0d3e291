// Command powereye is a terminal client for the PowerEye API.
//
// Usage:
//
//	powereye [-server URL] [-session FILE] <login EMAIL|logout|whoami|machines|alerts>
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"powereye/internal/client"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "powereye:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("powereye", flag.ContinueOnError)
	fs.SetOutput(stdout)
	server := fs.String("server", envOr("POWEREYE_URL", "http://localhost:5000"), "API base URL")
	sessionPath := fs.String("session", "", "session file (default: user config dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	path := *sessionPath
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return err
		}
	}

	api := client.New(*server, nil)
	session, err := client.OpenSession(path, api)
	if err != nil {
		return err
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd != "login" {
		if err := session.Restore(ctx); err != nil {
			return err
		}
	}

	switch cmd {
	case "login":
		return login(ctx, session, rest, stdin, stdout)
	case "logout":
		if err := session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Logged out")
		return nil
	case "whoami":
		user, ok := session.User()
		if !ok {
			return client.ErrNotLoggedIn
		}
		fmt.Fprintf(stdout, "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
		return nil
	case "machines":
		return listMachines(ctx, session, api, stdout)
	case "alerts":
		return listAlerts(ctx, session, api, stdout)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func login(ctx context.Context, session *client.Session, args []string, stdin io.Reader, stdout io.Writer) error {
	reader := bufio.NewReader(stdin)

	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		fmt.Fprint(stdout, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		email = strings.TrimSpace(line)
	}

	fmt.Fprint(stdout, "Password: ")
	pw, err := readSecret(stdin, reader)
	fmt.Fprintln(stdout)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer clear(pw)

	user, err := session.Login(ctx, email, string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

// readSecret reads without echo when stdin is a terminal, otherwise it takes
// the next line so passwords can be piped in.
func readSecret(stdin io.Reader, reader *bufio.Reader) ([]byte, error) {
	if f, ok := stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		return readPassword(int(f.Fd()))
	}
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func listMachines(ctx context.Context, session *client.Session, api *client.Client, stdout io.Writer) error {
	token, err := session.Token()
	if err != nil {
		return err
	}
	machines, err := api.Machines(ctx, token)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMODEL\tSTATUS\tRATED kW\tLOCATION")
	for _, m := range machines {
		rated := "-"
		if m.RatedPower.Valid {
			rated = m.RatedPower.Decimal.StringFixed(2)
		}
		location := "-"
		if m.Location != nil && *m.Location != "" {
			location = *m.Location
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Model, m.Status, rated, location)
	}
	return tw.Flush()
}

func listAlerts(ctx context.Context, session *client.Session, api *client.Client, stdout io.Writer) error {
	token, err := session.Token()
	if err != nil {
		return err
	}
	alerts, err := api.Alerts(ctx, token)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMACHINE\tTYPE\tSEVERITY\tRESOLVED\tCREATED")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n",
			a.ID, a.MachineName, a.AlertType, a.Severity, a.Resolved, a.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
