// Command client is a terminal client for the Briscola match server. See
// original_source/brsclient.c for the interaction this mirrors: a single
// first message (REG/CANC/DISC/CONNECT), then, on a successful CONNECT,
// an interactive trick-by-trick play loop over the same connection.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/leombro/labsol-13/internal/wire"
)

// mode is the client's operation, chosen by a trailing -r/-c/-d flag.
// The CLI shape is "client username password [-r|-c|-d] [-socket path]" —
// flags trailing the positional arguments, which the standard flag
// package can't express (it stops parsing flags at the first positional
// argument), so arguments are scanned by hand here instead.
type mode int

const (
	modeConnect mode = iota
	modeRegister
	modeCancel
	modeDisconnect
)

func main() {
	username, password, m, socketPath, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: client username password [-r|-c|-d] [-socket path]")
		os.Exit(1)
	}

	nc, err := net.Dial("unix", socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connecting to %s: %v\n", socketPath, err)
		os.Exit(1)
	}
	conn := wire.NewConn(nc)

	var first wire.Type
	switch m {
	case modeRegister:
		first = wire.Register
	case modeCancel:
		first = wire.Cancel
	case modeDisconnect:
		first = wire.ForceDisconnect
	default:
		first = wire.Connect
	}

	if err := conn.Send(wire.New(first, username+":"+password)); err != nil {
		fmt.Fprintf(os.Stderr, "sending request: %v\n", err)
		os.Exit(1)
	}
	reply, err := conn.Receive()
	if err != nil {
		fmt.Fprintf(os.Stderr, "server closed the connection: %v\n", err)
		os.Exit(1)
	}

	if m != modeConnect {
		explain(reply)
		conn.Close()
		return
	}

	in := bufio.NewReader(os.Stdin)
	var leading bool
	switch reply.Type {
	case wire.OK:
		fmt.Printf("players waiting: %s\nenter an opponent, or \"wait\": ", reply.Text())
		choice := readLine(in)
		if strings.EqualFold(choice, "wait") {
			if err := conn.Send(wire.New(wire.Wait, "")); err != nil {
				fmt.Fprintf(os.Stderr, "sending wait: %v\n", err)
				os.Exit(1)
			}
			confirm, err := conn.Receive()
			if err != nil || confirm.Type != wire.OK {
				fmt.Println("unexpected server reply, giving up")
				conn.Close()
				return
			}
			fmt.Println("waiting for an opponent...")
			leading = false
		} else {
			if err := conn.Send(wire.New(wire.OK, choice)); err != nil {
				fmt.Fprintf(os.Stderr, "sending choice: %v\n", err)
				os.Exit(1)
			}
			confirm, err := conn.Receive()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading confirmation: %v\n", err)
				os.Exit(1)
			}
			if confirm.Type != wire.OK {
				explain(confirm)
				conn.Close()
				return
			}
			leading = true
		}
	case wire.Wait:
		fmt.Println("no players currently waiting; you will be matched with the next one to connect.")
		leading = false
	default:
		explain(reply)
		conn.Close()
		return
	}

	play(conn, in, username, leading)
}

func parseArgs(args []string) (username, password string, m mode, socketPath string, err error) {
	socketPath = "/tmp/briscola.sock"
	var positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-r":
			m = modeRegister
		case a == "-c":
			m = modeCancel
		case a == "-d":
			m = modeDisconnect
		case a == "-socket":
			i++
			if i >= len(args) {
				return "", "", 0, "", fmt.Errorf("-socket requires a path")
			}
			socketPath = args[i]
		case strings.HasPrefix(a, "-socket="):
			socketPath = strings.TrimPrefix(a, "-socket=")
		default:
			positional = append(positional, a)
		}
	}
	if len(positional) != 2 {
		return "", "", 0, "", fmt.Errorf("expected username and password")
	}
	return positional[0], positional[1], m, socketPath, nil
}

// explain prints a non-interactive reply, mirroring brsclient.c's
// explainMsg_rc.
func explain(msg wire.Message) {
	switch msg.Type {
	case wire.OK:
		fmt.Println("server reply: ok")
	case wire.Refuse:
		fmt.Println("server reply: refused")
	case wire.Err:
		fmt.Println("server reply: error")
	}
	if len(msg.Payload) == 0 {
		fmt.Println("(no further information)")
	} else {
		fmt.Printf("%q\n", msg.Text())
	}
}

func readLine(in *bufio.Reader) string {
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// play drives one match to completion over conn, mirroring brsclient.c's
// Play function: receive STARTGAME, then alternate leading/following
// tricks until ENDGAME.
func play(conn wire.Conn, in *bufio.Reader, player string, leading bool) {
	start, err := conn.Receive()
	if err != nil || start.Type != wire.StartGame {
		fmt.Println("did not receive the expected start-of-game message")
		conn.Close()
		return
	}
	parts := strings.SplitN(start.Text(), ":", 3)
	if len(parts) != 3 {
		fmt.Println("malformed start-of-game message")
		conn.Close()
		return
	}
	trump, opponent := parts[0], parts[2]
	hand := []string{parts[1][0:2], parts[1][2:4], parts[1][4:6]}
	fmt.Printf("playing against %s, trump suit is %s\n", opponent, trump)

	finished := false
	for !finished {
		fmt.Printf("your hand: %s\n", strings.Join(hand, " "))
		var played string
		if leading {
			played, finished = leadTrick(conn, in, player, opponent)
		} else {
			played, finished = followTrick(conn, in, player, opponent)
		}
		if finished {
			break
		}

		next, err := conn.Receive()
		if err != nil {
			fmt.Println("lost connection to the server")
			conn.Close()
			return
		}
		switch next.Type {
		case wire.Card:
			cp := strings.SplitN(next.Text(), ":", 2)
			if len(cp) != 2 {
				fmt.Println("malformed card message")
				conn.Close()
				return
			}
			leading = cp[0] == "t"
			hand = replaceCard(hand, played, cp[1])
		case wire.EndGame:
			finished = printEndgame(next)
			conn.Close()
			return
		default:
			fmt.Println("unexpected message from server")
			conn.Close()
			return
		}
	}
	conn.Close()
}

// leadTrick plays player's card as the trick's leader, retrying on ERR,
// and returns the card played and whether the match ended.
func leadTrick(conn wire.Conn, in *bufio.Reader, player, opponent string) (string, bool) {
	for {
		fmt.Printf("%s, your turn: ", player)
		played := strings.ToUpper(readLine(in))
		if err := conn.Send(wire.New(wire.Play, played)); err != nil {
			fmt.Println("lost connection to the server")
			return played, true
		}
		reply, err := conn.Receive()
		if err != nil {
			fmt.Println("lost connection to the server")
			return played, true
		}
		switch reply.Type {
		case wire.Err:
			fmt.Println("rejected:", reply.Text())
		case wire.Play:
			fmt.Printf("%s plays %s\n", opponent, reply.Text())
			return played, false
		case wire.EndGame:
			return played, printEndgame(reply)
		default:
			fmt.Println("unexpected message from server")
			return played, true
		}
	}
}

// followTrick waits for the leader's card, then plays player's own,
// retrying on ERR, and returns the card played and whether the match
// ended.
func followTrick(conn wire.Conn, in *bufio.Reader, player, opponent string) (string, bool) {
	lead, err := conn.Receive()
	if err != nil {
		fmt.Println("lost connection to the server")
		return "", true
	}
	if lead.Type != wire.Play {
		fmt.Println("unexpected message from server")
		return "", true
	}
	fmt.Printf("%s plays %s\n", opponent, lead.Text())

	for {
		fmt.Printf("%s, your turn: ", player)
		played := strings.ToUpper(readLine(in))
		if err := conn.Send(wire.New(wire.Play, played)); err != nil {
			fmt.Println("lost connection to the server")
			return played, true
		}
		reply, err := conn.Receive()
		if err != nil {
			fmt.Println("lost connection to the server")
			return played, true
		}
		switch reply.Type {
		case wire.Err:
			fmt.Println("rejected:", reply.Text())
		case wire.OK:
			return played, false
		case wire.EndGame:
			return played, printEndgame(reply)
		default:
			fmt.Println("unexpected message from server")
			return played, true
		}
	}
}

// replaceCard swaps old for drawn in hand, or drops the slot when drawn
// is the "NN" exhausted-deck sentinel, mirroring brsclient.c's
// replace_string.
func replaceCard(hand []string, old, drawn string) []string {
	out := make([]string, 0, len(hand))
	replaced := false
	for _, c := range hand {
		if !replaced && c == old {
			replaced = true
			if drawn == "NN" {
				continue
			}
			out = append(out, drawn)
			continue
		}
		out = append(out, c)
	}
	return out
}

func printEndgame(msg wire.Message) bool {
	parts := strings.SplitN(msg.Text(), ":", 2)
	if len(parts) != 2 {
		fmt.Println("malformed end-of-game message")
		return true
	}
	if parts[0] == "draw" {
		fmt.Printf("the match ends in a draw, %s points each\n", parts[1])
	} else {
		fmt.Printf("%s wins with %s points\n", parts[0], parts[1])
	}
	return true
}
