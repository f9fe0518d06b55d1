package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/client"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/records"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const usage = `Usage: liftlog-cli [-server URL] [-api-key KEY] <command> [args]

Commands:
  start                          begin a workout (fetches history for live PR flags)
  add <exercise> <weight> <reps> log a set; prints * when it's a new record
  miss <exercise> <set#>         toggle a set's missed state
  complete <exercise> <set#>     toggle a set's completed state
  show                           print the workout in progress
  submit                         finish and send the workout to the server
  abort                          discard the workout in progress
`

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("LIFTLOG_API_KEY"), "API key for the sync endpoints")
	stateDir := flag.String("state-dir", "", "state directory (default ~/.liftlog)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-cli", Version)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".liftlog")
	}

	state, err := client.OpenStateDB(dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var api *client.API
	if *serverURL != "" {
		api = client.NewAPI(strings.TrimRight(*serverURL, "/"), *apiKey)
	}

	if err := run(args, state, api); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, state *client.StateDB, api *client.API) error {
	switch cmd, rest := args[0], args[1:]; cmd {
	case "start":
		return cmdStart(state, api)
	case "add":
		return cmdAdd(state, rest)
	case "miss":
		return cmdToggle(state, rest, "miss")
	case "complete":
		return cmdToggle(state, rest, "complete")
	case "show":
		return cmdShow(state)
	case "submit":
		return cmdSubmit(state, api)
	case "abort":
		return state.ClearSession()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdStart(state *client.StateDB, api *client.API) error {
	if _, err := state.LoadSession(); err == nil {
		return fmt.Errorf("a workout is already in progress (submit or abort it first)")
	}

	history := records.History{}
	if api != nil {
		h, err := api.FetchHistory()
		if err != nil {
			return fmt.Errorf("fetching history: %w", err)
		}
		history = h
		fmt.Printf("Workout started (%d exercises in history).\n", len(history))
	} else {
		fmt.Println("Workout started (offline: flags computed without server history).")
	}

	return state.SaveSession(client.NewSession(time.Now(), history))
}

func cmdAdd(state *client.StateDB, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: add <exercise> <weight> <reps>")
	}
	name := args[0]
	weight, err := strconv.ParseFloat(args[1], 64)
	if err != nil || weight < 0 {
		return fmt.Errorf("invalid weight %q", args[1])
	}
	reps, err := strconv.Atoi(args[2])
	if err != nil || reps < 0 {
		return fmt.Errorf("invalid reps %q", args[2])
	}

	sess, err := state.LoadSession()
	if err != nil {
		return err
	}

	ex := exerciseIndex(sess, name)
	if ex < 0 {
		ex = sess.AddExercise(name)
	}
	if err := sess.AddSet(ex, models.Set{Weight: weight, Reps: reps}); err != nil {
		return err
	}
	if err := state.SaveSession(sess); err != nil {
		return err
	}

	sets := sess.Workout.Exercises[ex].Sets
	fmt.Printf("%s set %d: %s\n", name, len(sets), formatSet(sets[len(sets)-1]))
	return nil
}

func cmdToggle(state *client.StateDB, args []string, mode string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s <exercise> <set#>", mode)
	}
	sess, err := state.LoadSession()
	if err != nil {
		return err
	}

	ex := exerciseIndex(sess, args[0])
	if ex < 0 {
		return fmt.Errorf("no exercise %q in this workout", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid set number %q", args[1])
	}

	if mode == "miss" {
		err = sess.ToggleMissed(ex, n-1)
	} else {
		err = sess.ToggleCompleted(ex, n-1)
	}
	if err != nil {
		return err
	}
	if err := state.SaveSession(sess); err != nil {
		return err
	}

	fmt.Printf("%s set %d: %s\n", args[0], n, formatSet(sess.Workout.Exercises[ex].Sets[n-1]))
	return nil
}

func cmdShow(state *client.StateDB) error {
	sess, err := state.LoadSession()
	if err != nil {
		return err
	}

	fmt.Printf("Workout started %s\n", sess.Workout.StartTime.Local().Format("Mon Jan 2 15:04"))
	for _, ex := range sess.Workout.Exercises {
		fmt.Printf("  %s\n", ex.Name)
		for i, set := range ex.Sets {
			fmt.Printf("    %d. %s\n", i+1, formatSet(set))
		}
	}
	return nil
}

func cmdSubmit(state *client.StateDB, api *client.API) error {
	if api == nil {
		return fmt.Errorf("-server is required to submit")
	}
	sess, err := state.LoadSession()
	if err != nil {
		return err
	}

	sess.Finish(time.Now())
	stored, err := api.SubmitWorkout(sess.Workout)
	if err != nil {
		return fmt.Errorf("submitting workout: %w", err)
	}
	if err := state.ClearSession(); err != nil {
		return err
	}

	prs := 0
	for _, ex := range stored.Exercises {
		for _, set := range ex.Sets {
			if set.IsPR {
				prs++
			}
		}
	}
	fmt.Printf("Workout %s saved (%d record sets).\n", stored.ID, prs)
	return nil
}

func exerciseIndex(sess *client.Session, name string) int {
	for i, ex := range sess.Workout.Exercises {
		if strings.EqualFold(ex.Name, name) {
			return i
		}
	}
	return -1
}

func formatSet(s models.Set) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%g x %d", s.Weight, s.Reps)
	if s.Missed {
		b.WriteString("  (missed)")
	} else if !s.IsCompleted() {
		b.WriteString("  (incomplete)")
	}
	if s.IsPR {
		b.WriteString("  *PR*")
	}
	return b.String()
}
