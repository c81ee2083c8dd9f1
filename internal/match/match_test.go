package match

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/leombro/labsol-13/internal/card"
	"github.com/leombro/labsol-13/internal/deck"
	"github.com/leombro/labsol-13/internal/wire"
)

// driver plays a full match from the client side of the wire protocol,
// tracking its own hand and using the CARD message's "t"/"a" prefix to
// learn whether it leads the next trick, exactly as a real terminal
// client would.
type driver struct {
	conn    wire.Conn
	leader  bool
	hand    []card.Card
	winner  string
	points  int
	draw    bool
}

func (d *driver) run(t *testing.T) {
	msg, err := d.conn.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.StartGame, msg.Type)
	parts := strings.Split(msg.Text(), ":")
	require.Len(t, parts, 3)
	for i := 0; i < len(parts[1]); i += 2 {
		c, err := card.Decode(parts[1][i : i+2])
		require.NoError(t, err)
		d.hand = append(d.hand, c)
	}

	for {
		if d.leader {
			require.NotEmpty(t, d.hand)
			played := d.hand[0]
			d.hand = d.hand[1:]
			require.NoError(t, d.conn.Send(wire.New(wire.Play, card.Encode(played))))

			reply, err := d.conn.Receive()
			require.NoError(t, err)
			require.Equal(t, wire.Play, reply.Type)
		} else {
			lead, err := d.conn.Receive()
			require.NoError(t, err)
			require.Equal(t, wire.Play, lead.Type)

			require.NotEmpty(t, d.hand)
			played := d.hand[0]
			d.hand = d.hand[1:]
			require.NoError(t, d.conn.Send(wire.New(wire.Play, card.Encode(played))))

			ok, err := d.conn.Receive()
			require.NoError(t, err)
			require.Equal(t, wire.OK, ok.Type)
		}

		next, err := d.conn.Receive()
		require.NoError(t, err)
		switch next.Type {
		case wire.Card:
			cp := strings.SplitN(next.Text(), ":", 2)
			require.Len(t, cp, 2)
			d.leader = cp[0] == "t"
			if cp[1] != "NN" {
				c, err := card.Decode(cp[1])
				require.NoError(t, err)
				d.hand = append(d.hand, c)
			}
		case wire.EndGame:
			ep := strings.SplitN(next.Text(), ":", 2)
			require.Len(t, ep, 2)
			points, err := strconv.Atoi(ep[1])
			require.NoError(t, err)
			d.points = points
			if ep[0] == "draw" {
				d.draw = true
			} else {
				d.winner = ep[0]
			}
			return
		default:
			t.Fatalf("unexpected message type %q after trick", next.Type)
		}
	}
}

func TestPlayFullMatchEndsWithConsistentScore(t *testing.T) {
	serverP1, clientP1 := net.Pipe()
	serverP2, clientP2 := net.Pipe()
	defer serverP1.Close()
	defer clientP1.Close()
	defer serverP2.Close()
	defer clientP2.Close()

	engine := NewEngine(zerolog.Nop())
	d := deck.New(deck.FixedOrderSource())

	var transcript strings.Builder
	var outcome Outcome
	var playErr error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		outcome, playErr = engine.Play(d, &transcript, Player{Name: "alice", Conn: wire.NewConn(serverP1)}, Player{Name: "bob", Conn: wire.NewConn(serverP2)})
	}()

	p1 := &driver{conn: wire.NewConn(clientP1), leader: true}
	p2 := &driver{conn: wire.NewConn(clientP2), leader: false}
	go func() { defer wg.Done(); p1.run(t) }()
	go func() { defer wg.Done(); p2.run(t) }()
	wg.Wait()

	require.NoError(t, playErr)
	require.Equal(t, p1.draw, outcome.Draw)
	require.Equal(t, p1.points, outcome.Points)
	if !outcome.Draw {
		require.Equal(t, outcome.Winner, p1.winner)
	}
	require.Contains(t, transcript.String(), "alice:bob\nBRISCOLA:")
	require.Contains(t, transcript.String(), "\nWINS:")
	require.Contains(t, transcript.String(), "\nPOINTS:")
}

// TestOutcomeFromScoresTiedSplitIsADraw covers spec.md §8 scenario 6: a
// 60/60 split is reported as a draw carrying the shared point total,
// rather than picking either name as winner.
func TestOutcomeFromScoresTiedSplitIsADraw(t *testing.T) {
	out := outcomeFromScores("alice", "bob", 60, 60)
	require.True(t, out.Draw)
	require.Empty(t, out.Winner)
	require.Equal(t, 60, out.Points)
	require.Equal(t, "draw", endgameWinnerToken(out))

	out = outcomeFromScores("alice", "bob", 61, 59)
	require.False(t, out.Draw)
	require.Equal(t, "alice", out.Winner)

	out = outcomeFromScores("alice", "bob", 59, 61)
	require.False(t, out.Draw)
	require.Equal(t, "bob", out.Winner)
}

func TestPlayRetriesOnInvalidCardThenAcceptsValid(t *testing.T) {
	serverP1, clientP1 := net.Pipe()
	serverP2, clientP2 := net.Pipe()
	defer serverP1.Close()
	defer clientP1.Close()
	defer serverP2.Close()
	defer clientP2.Close()

	engine := NewEngine(zerolog.Nop())
	d := deck.New(deck.FixedOrderSource())

	var transcript strings.Builder
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = engine.Play(d, &transcript, Player{Name: "alice", Conn: wire.NewConn(serverP1)}, Player{Name: "bob", Conn: wire.NewConn(serverP2)})
	}()

	c1 := wire.NewConn(clientP1)
	msg, err := c1.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.StartGame, msg.Type)

	// The engine sends STARTGAME to bob right after alice; read it before
	// alice plays, since net.Pipe's Send blocks until the peer reads.
	c2 := wire.NewConn(clientP2)
	bobStart, err := c2.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.StartGame, bobStart.Type)

	require.NoError(t, c1.Send(wire.New(wire.Play, "XX")))
	errMsg, err := c1.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.Err, errMsg.Type)
	require.Equal(t, errFormat, errMsg.Text())

	parts := strings.Split(msg.Text(), ":")
	firstCard := parts[1][0:2]
	hand := []string{parts[1][0:2], parts[1][2:4], parts[1][4:6]}

	notInHandToken := ""
	for _, r := range "A234567JQK" {
		for _, s := range "CQFP" {
			token := string(r) + string(s)
			found := false
			for _, h := range hand {
				if h == token {
					found = true
					break
				}
			}
			if !found {
				notInHandToken = token
				break
			}
		}
		if notInHandToken != "" {
			break
		}
	}
	require.NotEmpty(t, notInHandToken)

	require.NoError(t, c1.Send(wire.New(wire.Play, notInHandToken)))
	notInHand, err := c1.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.Err, notInHand.Type)
	require.Equal(t, errNotInHand, notInHand.Text())

	require.NoError(t, c1.Send(wire.New(wire.Play, firstCard)))

	forwarded, err := c2.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.Play, forwarded.Type)
	require.Equal(t, firstCard, forwarded.Text())

	clientP1.Close()
	clientP2.Close()
	<-done
}
