// Package match implements the per-match game engine: it owns a deck and
// two hands and drives two wire.Conn endpoints through the trick loop
// described in original_source/brsserver.c's Play function until the
// match is over, then reports the winner.
package match

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/leombro/labsol-13/internal/card"
	"github.com/leombro/labsol-13/internal/compare"
	"github.com/leombro/labsol-13/internal/deck"
	"github.com/leombro/labsol-13/internal/hand"
	"github.com/leombro/labsol-13/internal/score"
	"github.com/leombro/labsol-13/internal/wire"
)

// Player is one match participant: a stable identity (name) and the
// connection used to reach them. The identity never moves once a match
// starts; which of the two plays "first" in a given trick does.
type Player struct {
	Name string
	Conn wire.Conn
}

// Outcome is the result of a finished match.
type Outcome struct {
	Winner string // empty on a draw
	Points int
	Draw   bool
}

// ErrUnexpectedMessage is returned when a peer sends something other than
// a PLAY message while the engine is awaiting a play.
var ErrUnexpectedMessage = errors.New("match: unexpected message type while awaiting play")

const (
	errFormat    = "format"
	errNotInHand = "not in hand"
)

// Engine runs one match to completion.
type Engine struct {
	log zerolog.Logger
}

// NewEngine builds an Engine that logs through log.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// Play runs a full match between p1 (the challenger, who leads the first
// trick) and p2 using cards from d, writing one transcript line per trick
// plus header and footer to transcript. It returns once the match ends
// normally (exhausted hands and deck) or once a peer is lost or sends a
// malformed message outside of the retry protocol.
func (e *Engine) Play(d *deck.Deck, transcript io.Writer, p1, p2 Player) (Outcome, error) {
	trump := d.Trump()

	var firstHand, secondHand hand.Hand
	for i := 0; i < hand.Slots; i++ {
		c1, _ := d.Draw()
		c2, _ := d.Draw()
		firstHand[i] = &c1
		secondHand[i] = &c2
	}

	fmt.Fprintf(transcript, "%s:%s\nBRISCOLA:%s\n", p1.Name, p2.Name, trump.String())

	firstName, secondName := p1.Name, p2.Name
	firstConn, secondConn := p1.Conn, p2.Conn

	if err := firstConn.Send(wire.New(wire.StartGame, startGamePayload(trump, firstHand, secondName))); err != nil {
		return Outcome{}, err
	}
	if err := secondConn.Send(wire.New(wire.StartGame, startGamePayload(trump, secondHand, firstName))); err != nil {
		return Outcome{}, err
	}

	e.log.Debug().Str("p1", p1.Name).Str("p2", p2.Name).Str("trump", trump.String()).Msg("match started")

	var p1Pile, p2Pile []card.Card

	for !hand.MatchOver(firstHand, secondHand) {
		leaderCard, err := e.readValidPlay(firstConn, &firstHand)
		if err != nil {
			e.log.Debug().Err(err).Str("player", firstName).Msg("lost leader during trick")
			return Outcome{}, err
		}
		if err := secondConn.Send(wire.New(wire.Play, card.Encode(leaderCard))); err != nil {
			return Outcome{}, err
		}

		followerCard, err := e.readValidPlay(secondConn, &secondHand)
		if err != nil {
			return Outcome{}, err
		}
		if err := secondConn.Send(wire.New(wire.OK, "")); err != nil {
			return Outcome{}, err
		}
		if err := firstConn.Send(wire.New(wire.Play, card.Encode(followerCard))); err != nil {
			return Outcome{}, err
		}

		fmt.Fprintf(transcript, "%s:%s#%s:%s\n", firstName, card.Encode(leaderCard), secondName, card.Encode(followerCard))

		firstWins := compare.FirstWins(trump, leaderCard, followerCard)
		winnerCard, loserCard := leaderCard, followerCard
		winnerName := firstName
		if !firstWins {
			winnerCard, loserCard = followerCard, leaderCard
			winnerName = secondName
		}
		if winnerName == p1.Name {
			p1Pile = append(p1Pile, leaderCard, followerCard)
		} else {
			p2Pile = append(p2Pile, leaderCard, followerCard)
		}

		if !firstWins {
			hand.Swap(&firstHand, &secondHand)
			firstName, secondName = secondName, firstName
			firstConn, secondConn = secondConn, firstConn
		}

		drawnForFirst, ok1 := d.Draw()
		drawnForSecond, ok2 := d.Draw()
		var firstDrawn, secondDrawn *card.Card
		if ok1 {
			firstDrawn = &drawnForFirst
		}
		if ok2 {
			secondDrawn = &drawnForSecond
		}
		firstHand.Replace(winnerCard, firstDrawn)
		secondHand.Replace(loserCard, secondDrawn)

		if !hand.MatchOver(firstHand, secondHand) {
			if err := firstConn.Send(wire.New(wire.Card, "t:"+cardToken(firstDrawn))); err != nil {
				return Outcome{}, err
			}
			if err := secondConn.Send(wire.New(wire.Card, "a:"+cardToken(secondDrawn))); err != nil {
				return Outcome{}, err
			}
		}
	}

	points1, points2 := score.Total(p1Pile), score.Total(p2Pile)
	out := outcomeFromScores(p1.Name, p2.Name, points1, points2)

	if out.Draw {
		fmt.Fprintf(transcript, "WINS:draw\nPOINTS:%d\n", out.Points)
	} else {
		fmt.Fprintf(transcript, "WINS:%s\nPOINTS:%d\n", out.Winner, out.Points)
	}

	e.log.Info().Str("p1", p1.Name).Str("p2", p2.Name).Bool("draw", out.Draw).Str("winner", out.Winner).Int("points", out.Points).Msg("match finished")

	endgamePayload := fmt.Sprintf("%s:%d", endgameWinnerToken(out), out.Points)
	if err := p1.Conn.Send(wire.New(wire.EndGame, endgamePayload)); err != nil {
		return Outcome{}, err
	}
	if err := p2.Conn.Send(wire.New(wire.EndGame, endgamePayload)); err != nil {
		return Outcome{}, err
	}

	return out, nil
}

// outcomeFromScores decides the winner from final pile totals, a 120-point
// table split 60/60 being the only draw case (spec.md §8 scenario 6).
func outcomeFromScores(p1Name, p2Name string, points1, points2 int) Outcome {
	switch {
	case points1 > points2:
		return Outcome{Winner: p1Name, Points: points1}
	case points2 > points1:
		return Outcome{Winner: p2Name, Points: points2}
	default:
		return Outcome{Draw: true, Points: points1}
	}
}

func endgameWinnerToken(o Outcome) string {
	if o.Draw {
		return "draw"
	}
	return o.Winner
}

func cardToken(c *card.Card) string {
	if c == nil {
		return "NN"
	}
	return card.Encode(*c)
}

func startGamePayload(trump card.Suit, h hand.Hand, opponent string) string {
	cards := ""
	for _, c := range h {
		cards += card.Encode(*c)
	}
	return fmt.Sprintf("%s:%s:%s", trump.String(), cards, opponent)
}

// readValidPlay receives a PLAY message from conn and retries, replying
// ERR, until the peer sends a decodable card present in h — mirroring the
// inner validation loop of original_source/brsserver.c's Play.
func (e *Engine) readValidPlay(conn wire.Conn, h *hand.Hand) (card.Card, error) {
	for {
		msg, err := conn.Receive()
		if err != nil {
			return card.Card{}, err
		}
		if msg.Type != wire.Play {
			return card.Card{}, ErrUnexpectedMessage
		}
		c, err := card.Decode(msg.Text())
		if err != nil {
			if sendErr := conn.Send(wire.New(wire.Err, errFormat)); sendErr != nil {
				return card.Card{}, sendErr
			}
			continue
		}
		if !h.Contains(c) {
			if sendErr := conn.Send(wire.New(wire.Err, errNotInHand)); sendErr != nil {
				return card.Card{}, sendErr
			}
			continue
		}
		return c, nil
	}
}
