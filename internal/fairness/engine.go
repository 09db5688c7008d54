package fairness

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoParticipants = errors.New("no participants")
	ErrTooManyWinners = errors.New("winner count exceeds participant count")
	// ErrRetryExhausted means the multi-winner skip-and-remap loop hit its
	// attempt ceiling. The round is left unresolved for manual intervention.
	ErrRetryExhausted = errors.New("winner selection retries exhausted")
	ErrProofMismatch  = errors.New("proof does not reproduce recorded winner")
)

// maxSelectionAttempts converts a theoretically possible selection cycle into
// a detectable failure instead of an infinite loop.
const maxSelectionAttempts = 1000

// Proof carries everything a third party needs to re-derive one winner
// selection and confirm it matches the recorded outcome.
type Proof struct {
	ServerSeed              string    `json:"server_seed"`
	ClientSeed              string    `json:"client_seed"`
	RoundNonce              string    `json:"round_nonce"`
	Position                int       `json:"position"`
	Attempt                 int       `json:"attempt"`
	Participants            []string  `json:"participants"`
	ParticipantsFingerprint string    `json:"participants_fingerprint"`
	CombinedDigest          string    `json:"combined_digest"`
	WinnerIndex             int       `json:"winner_index"`
	WinnerID                string    `json:"winner_id"`
	Timestamp               time.Time `json:"timestamp"`
}

// SelectWinner runs the single-winner path: one digest over the committed
// server seed, the resolution-time client seed, the round nonce and the
// participant list, mapped onto the participant range.
//
// The modulo mapping carries a small, bounded selection bias when the
// participant count does not evenly divide the digest space. Acceptable at
// this domain's pool sizes; rejection sampling would remove it.
func SelectWinner(serverSeed, clientSeed, roundNonce string, participants []string) (Proof, error) {
	if len(participants) == 0 {
		return Proof{}, ErrNoParticipants
	}
	digest := combinedDigest(serverSeed, clientSeed, roundNonce, participants)
	idx := indexFromDigest(digest, len(participants))
	return Proof{
		ServerSeed:              serverSeed,
		ClientSeed:              clientSeed,
		RoundNonce:              roundNonce,
		Position:                1,
		Attempt:                 0,
		Participants:            append([]string(nil), participants...),
		ParticipantsFingerprint: Fingerprint(participants),
		CombinedDigest:          hex.EncodeToString(digest),
		WinnerIndex:             idx,
		WinnerID:                participants[idx],
		Timestamp:               time.Now().UTC(),
	}, nil
}

// SelectWinners runs the multi-winner path: one selection per position with a
// position-scoped seed, drawn from the shrinking pool of candidates not yet
// chosen. Attempts are capped; exceeding the cap is fatal for the round.
func SelectWinners(serverSeed, clientSeed, roundNonce string, participants []string, count int) ([]Proof, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if count < 1 || count > len(participants) {
		return nil, ErrTooManyWinners
	}
	if count == 1 {
		p, err := SelectWinner(serverSeed, clientSeed, roundNonce, participants)
		if err != nil {
			return nil, err
		}
		return []Proof{p}, nil
	}

	chosen := make(map[string]bool, count)
	remaining := append([]string(nil), participants...)
	out := make([]Proof, 0, count)

	for position := 1; position <= count; position++ {
		var picked bool
		for attempt := 0; attempt < maxSelectionAttempts; attempt++ {
			seed := positionSeed(serverSeed, position, attempt)
			digest := combinedDigest(seed, clientSeed, roundNonce, remaining)
			idx := indexFromDigest(digest, len(remaining))
			winner := remaining[idx]
			if chosen[winner] {
				// Only possible if remaining-pool bookkeeping went
				// inconsistent; retry with the next attempt seed.
				continue
			}
			chosen[winner] = true
			out = append(out, Proof{
				ServerSeed:              seed,
				ClientSeed:              clientSeed,
				RoundNonce:              roundNonce,
				Position:                position,
				Attempt:                 attempt,
				Participants:            append([]string(nil), remaining...),
				ParticipantsFingerprint: Fingerprint(remaining),
				CombinedDigest:          hex.EncodeToString(digest),
				WinnerIndex:             idx,
				WinnerID:                winner,
				Timestamp:               time.Now().UTC(),
			})
			remaining = append(remaining[:idx], remaining[idx+1:]...)
			picked = true
			break
		}
		if !picked {
			return nil, ErrRetryExhausted
		}
	}
	return out, nil
}

// Verify re-derives the digest from the published proof inputs and confirms
// it reproduces the recorded winner index and id.
func Verify(p Proof) error {
	if len(p.Participants) == 0 {
		return ErrNoParticipants
	}
	if Fingerprint(p.Participants) != p.ParticipantsFingerprint {
		return ErrProofMismatch
	}
	digest := combinedDigest(p.ServerSeed, p.ClientSeed, p.RoundNonce, p.Participants)
	if hex.EncodeToString(digest) != p.CombinedDigest {
		return ErrProofMismatch
	}
	idx := indexFromDigest(digest, len(p.Participants))
	if idx != p.WinnerIndex || p.Participants[idx] != p.WinnerID {
		return ErrProofMismatch
	}
	return nil
}

// ResultHash condenses an ordered proof set into one verifiable digest,
// stored on the round row.
func ResultHash(proofs []Proof) string {
	h := sha256.New()
	for _, p := range proofs {
		fmt.Fprintf(h, "%d:%s:%s\n", p.Position, p.CombinedDigest, p.WinnerID)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint is the digest of the ordered participant list, detecting any
// after-the-fact list tampering in a published proof.
func Fingerprint(participants []string) string {
	sum := sha256.Sum256([]byte(strings.Join(participants, ",")))
	return hex.EncodeToString(sum[:])
}

func positionSeed(serverSeed string, position, attempt int) string {
	return fmt.Sprintf("%s_position_%d_attempt_%d", serverSeed, position, attempt)
}

func combinedDigest(serverSeed, clientSeed, roundNonce string, participants []string) []byte {
	h := sha256.New()
	h.Write([]byte(serverSeed))
	h.Write([]byte("|"))
	h.Write([]byte(clientSeed))
	h.Write([]byte("|"))
	h.Write([]byte(roundNonce))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(participants, ",")))
	return h.Sum(nil)
}

func indexFromDigest(digest []byte, n int) int {
	v := binary.BigEndian.Uint64(digest[:8])
	return int(v % uint64(n))
}
