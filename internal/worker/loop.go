package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nicholaskarlsen/mdcouple/internal/observability"
	"github.com/nicholaskarlsen/mdcouple/internal/protocol"
	"github.com/nicholaskarlsen/mdcouple/internal/session"
)

// Config tunes serve-loop behavior.
type Config struct {
	// Node labels this worker in logs and metrics.
	Node string
	// AbortOnComputeError ends the session on the first evaluator failure
	// instead of reporting a negative-ID response and continuing.
	AbortOnComputeError bool
}

// Loop serves one coupling session: it receives SETUP/STEP requests,
// invokes the evaluator, and replies with forces, energy and virial until
// the client terminates the session.
type Loop struct {
	sess *session.Session
	eval Evaluator
	log  zerolog.Logger
	cfg  Config

	state StepInput
	steps atomic.Uint64
}

func NewLoop(sess *session.Session, eval Evaluator, logger zerolog.Logger, cfg Config) *Loop {
	if cfg.Node == "" {
		cfg.Node = "worker"
	}
	return &Loop{
		sess: sess,
		eval: eval,
		log:  logger.With().Str("node", cfg.Node).Logger(),
		cfg:  cfg,
	}
}

// Run blocks serving requests until clean termination (nil), abnormal
// client exit, session failure, or context cancellation. Cancellation is
// observed between exchanges; a receive already in flight blocks until
// the peer acts, per the protocol's no-timeout contract.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			l.sess.Abort(-1, "worker canceled")
			return err
		}

		msg, err := l.sess.Recv()
		if errors.Is(err, session.ErrEnded) {
			l.log.Info().Uint64("steps", l.steps.Load()).Msg("session terminated cleanly")
			return nil
		}
		if err != nil {
			observability.RecordSessionFailure(l.cfg.Node, failureKind(err))
			return err
		}

		start := time.Now()
		phase := phaseName(msg.ID)

		if err := l.applyRequest(msg); err != nil {
			observability.RecordStep(l.cfg.Node, phase, "error", time.Since(start))
			l.sess.Abort(-msg.ID, err.Error())
			return err
		}

		out, err := l.eval.Evaluate(ctx, l.state)
		if err != nil {
			comp := &ComputationError{Reason: "evaluator rejected step", Err: err}
			observability.RecordStep(l.cfg.Node, phase, "error", time.Since(start))
			l.log.Error().Err(err).Int32("message_id", msg.ID).Msg("external computation failed")
			if l.cfg.AbortOnComputeError {
				l.sess.Abort(-msg.ID, err.Error())
				return comp
			}
			reply := &protocol.Message{
				ID:     -msg.ID,
				Fields: []protocol.Field{protocol.NewStringField(1, err.Error())},
			}
			if err := l.sess.Send(reply); err != nil {
				observability.RecordSessionFailure(l.cfg.Node, failureKind(err))
				return err
			}
			continue
		}

		if err := l.checkOutput(out); err != nil {
			observability.RecordStep(l.cfg.Node, phase, "error", time.Since(start))
			l.sess.Abort(-msg.ID, err.Error())
			return err
		}

		reply := &protocol.Message{
			ID: msg.ID,
			Fields: []protocol.Field{
				protocol.NewFloatField(protocol.FieldForces, out.Forces),
				protocol.NewScalarFloatField(protocol.FieldEnergy, out.Energy),
				protocol.NewFloatField(protocol.FieldVirial, out.Virial),
			},
		}
		if err := l.sess.Send(reply); err != nil {
			observability.RecordSessionFailure(l.cfg.Node, failureKind(err))
			return err
		}

		l.steps.Add(1)
		observability.RecordStep(l.cfg.Node, phase, "ok", time.Since(start))
		l.log.Debug().
			Int32("message_id", msg.ID).
			Str("phase", phase).
			Float64("energy", out.Energy).
			Dur("duration", time.Since(start)).
			Msg("step served")
	}
}

// applyRequest folds the request's fields into the accumulated system
// state. Unrecognized field IDs are ignored and logged: the wire format
// carries no schema, and a newer client may send fields this variant does
// not consume.
func (l *Loop) applyRequest(msg *protocol.Message) error {
	for _, f := range msg.Fields {
		var err error
		switch f.ID {
		case protocol.FieldUnits:
			l.state.Units, err = f.String()
		case protocol.FieldDim:
			l.state.Dim, err = f.Int32()
		case protocol.FieldNatoms:
			l.state.Natoms, err = f.Int32()
		case protocol.FieldNtypes:
			l.state.Ntypes, err = f.Int32()
		case protocol.FieldBoxLo:
			l.state.BoxLo, err = f.Floats()
		case protocol.FieldBoxHi:
			l.state.BoxHi, err = f.Floats()
		case protocol.FieldBoxTilt:
			l.state.BoxTilt, err = f.Floats()
		case protocol.FieldTypes:
			l.state.Types, err = f.Int32s()
		case protocol.FieldCoords:
			l.state.Coords, err = f.Floats()
		case protocol.FieldCharge:
			l.state.Charges, err = f.Floats()
		default:
			name := "unknown"
			if n, ok := protocol.RequestFieldName(f.ID); ok {
				name = n
			}
			l.log.Warn().
				Int32("field_id", f.ID).
				Str("field", name).
				Msg("ignoring unrecognized request field")
			continue
		}
		if err != nil {
			return fmt.Errorf("worker: request field %d: %w", f.ID, err)
		}
	}

	if l.state.Natoms <= 0 {
		return fmt.Errorf("worker: request before system definition (natoms=%d)", l.state.Natoms)
	}
	if want := 3 * int(l.state.Natoms); len(l.state.Coords) != want {
		return fmt.Errorf("worker: coords length %d, want %d for %d atoms",
			len(l.state.Coords), want, l.state.Natoms)
	}
	if len(l.state.Types) != 0 && len(l.state.Types) != int(l.state.Natoms) {
		return fmt.Errorf("worker: types length %d, want %d", len(l.state.Types), l.state.Natoms)
	}
	return nil
}

func (l *Loop) checkOutput(out StepOutput) error {
	if want := 3 * int(l.state.Natoms); len(out.Forces) != want {
		return fmt.Errorf("worker: evaluator returned %d force components, want %d", len(out.Forces), want)
	}
	if len(out.Virial) != 6 {
		return fmt.Errorf("worker: evaluator returned %d virial components, want 6", len(out.Virial))
	}
	return nil
}

// Steps returns the number of successfully served step exchanges.
func (l *Loop) Steps() uint64 { return l.steps.Load() }

// Session exposes the underlying session for the status surface.
func (l *Loop) Session() *session.Session { return l.sess }

func phaseName(id int32) string {
	switch id {
	case protocol.MsgSetup:
		return "setup"
	case protocol.MsgStep:
		return "step"
	}
	return "other"
}

func failureKind(err error) string {
	var abnormal *session.AbnormalError
	switch {
	case errors.As(err, &abnormal):
		return "abnormal_peer_exit"
	case errors.Is(err, protocol.ErrMalformed):
		return "malformed_message"
	case errors.Is(err, session.ErrProtocolMismatch):
		return "protocol_mismatch"
	default:
		return "transport"
	}
}
