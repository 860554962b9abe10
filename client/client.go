package client

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	rl "github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"onenight/game"
)

// Run plays a hotseat game in the terminal: one human seat against
// bots. Timers stay off, so the night waits for the human and the bots
// answer instantly.
func Run(name string) error {
	cfg := game.Config{
		DefaultDiscussion: time.Hour,
		VoteTimeout:       time.Hour,
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	session := game.NewSession(game.NewRoomCode(rng), name)
	engine := game.NewEngine(session, cfg, rng, zerolog.Nop())
	defer engine.Close()

	engine.SetEventFn(func(ev game.Event) {
		if ev.Narration != "" {
			fmt.Printf("\n* %s\n", ev.Narration)
		}
	})

	completer := rl.NewPrefixCompleter(
		rl.PcItem("addbot"),
		rl.PcItem("roles"),
		rl.PcItem("players"),
		rl.PcItem("start"),
		rl.PcItem("me"),
		rl.PcItem("turn"),
		rl.PcItem("pick"),
		rl.PcItem("centers"),
		rl.PcItem("center"),
		rl.PcItem("skip"),
		rl.PcItem("ready"),
		rl.PcItem("vote"),
		rl.PcItem("result"),
		rl.PcItem("again"),
	)

	l, err := rl.NewEx(&rl.Config{
		Prompt:          "» ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer l.Close()

	repl(l, engine, session.HostID)
	return nil
}

func repl(l *rl.Instance, engine *game.Engine, me string) {
	fmt.Printf("Type 'addbot' a few times, then 'start'. 'help' lists commands.\n")

	for {
		snap := engine.Snapshot()
		phase := "lobby"
		if snap.GameState != nil {
			phase = string(snap.GameState.Phase)
		}
		l.SetPrompt(fmt.Sprintf("%s» ", phase))

		line, err := l.Readline()
		if err == rl.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
		cmd := parts[0]
		rest := ""
		if len(parts) == 2 {
			rest = parts[1]
		}

		switch cmd {
		case "help":
			printHelp()
		case "addbot":
			bot, err := engine.AddBot(me)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("%s joined\n", bot.Name)
		case "roles":
			for _, r := range game.AllRoles() {
				fmt.Printf("%-14s %-8s %s\n", r.Name, r.Team, r.Description)
			}
		case "players":
			printPlayers(engine.Snapshot())
		case "start":
			if err := engine.StartGame(me); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printMe(engine.Snapshot(), me)
			printTurn(engine)
		case "me":
			printMe(engine.Snapshot(), me)
		case "turn":
			printTurn(engine)
		case "pick":
			names := strings.Fields(rest)
			if len(names) == 0 {
				fmt.Printf("pick <name> [name]\n")
				continue
			}
			ids, err := namesToIDs(engine.Snapshot(), names)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			submit(engine, me, game.Selection{PlayerIDs: ids})
		case "centers":
			var a, b int
			if _, err := fmt.Sscan(rest, &a, &b); err != nil {
				fmt.Printf("centers <1-3> <1-3>\n")
				continue
			}
			submit(engine, me, game.Selection{CenterPositions: []int{a - 1, b - 1}})
		case "center":
			var a int
			if _, err := fmt.Sscan(rest, &a); err != nil {
				fmt.Printf("center <1-3>\n")
				continue
			}
			submit(engine, me, game.Selection{CenterPositions: []int{a - 1}})
		case "skip":
			submit(engine, me, game.Selection{Decline: true})
		case "ready":
			if err := engine.MarkReady(me); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "vote":
			target := strings.TrimSpace(rest)
			if target == "" {
				fmt.Printf("vote <name>\n")
				continue
			}
			ids, err := namesToIDs(engine.Snapshot(), []string{target})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if err := engine.CastVote(me, ids[0]); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printResult(engine)
		case "result":
			printResult(engine)
		case "again":
			if err := engine.PlayAgain(me); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "exit", "quit":
			return
		case "":
		default:
			fmt.Printf("unknown\n")
		}
	}
}

func printHelp() {
	fmt.Printf("addbot            seat another bot\n")
	fmt.Printf("roles             describe the role catalog\n")
	fmt.Printf("players           list the seats\n")
	fmt.Printf("start             deal and begin the night\n")
	fmt.Printf("me                your card and notes\n")
	fmt.Printf("turn              who the night is waiting on\n")
	fmt.Printf("pick <name>...    act on players\n")
	fmt.Printf("centers <i> <j>   view two center cards\n")
	fmt.Printf("center <i>        swap with a center card\n")
	fmt.Printf("skip              decline your night action\n")
	fmt.Printf("ready             done discussing\n")
	fmt.Printf("vote <name>       vote to eliminate\n")
	fmt.Printf("result            show the outcome\n")
	fmt.Printf("again             back to the lobby\n")
}

func printPlayers(s *game.Session) {
	for _, p := range s.Players {
		tags := ""
		if p.IsHost {
			tags += " host"
		}
		if p.IsBot {
			tags += " bot"
		}
		fmt.Printf("%s%s\n", p.Name, tags)
	}
}

func printMe(s *game.Session, me string) {
	p := s.PlayerByID(me)
	if p == nil || p.OriginalRole == "" {
		fmt.Printf("no card yet\n")
		return
	}
	r, _ := game.RoleByID(p.OriginalRole)
	fmt.Printf("Your card: %s (%s)\n", r.Name, r.Description)
	for _, n := range p.NightNotes {
		fmt.Printf("  %s\n", n)
	}
}

func printTurn(engine *game.Engine) {
	turn := engine.Turn()
	if turn == nil {
		fmt.Printf("nobody is being waited on\n")
		return
	}
	r, _ := game.RoleByID(turn.Role)
	fmt.Printf("waiting on the %s\n", r.Name)
}

func printResult(engine *game.Engine) {
	res := engine.Result()
	if res == nil {
		return
	}
	s := engine.Snapshot()
	for _, p := range s.Players {
		fmt.Printf("%-10s was %s, ended as %s\n", p.Name, roleLabel(p.OriginalRole), roleLabel(p.CurrentRole))
	}
	fmt.Printf("Eliminated: %s\n", nameList(s, res.Eliminated))
	fmt.Printf("Winners: %s\n", nameList(s, res.Winners))
}

func roleLabel(id string) string {
	if r, ok := game.RoleByID(id); ok {
		return r.Name
	}
	return id
}

func nameList(s *game.Session, ids []string) string {
	if len(ids) == 0 {
		return "nobody"
	}
	var names []string
	for _, id := range ids {
		if p := s.PlayerByID(id); p != nil {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func namesToIDs(s *game.Session, names []string) ([]string, error) {
	var ids []string
	for _, name := range names {
		p := s.PlayerByName(name)
		if p == nil {
			return nil, fmt.Errorf("no player called %s", name)
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func submit(engine *game.Engine, me string, sel game.Selection) {
	if err := engine.SubmitSelection(me, sel); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printMe(engine.Snapshot(), me)
}
