package client

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nicholaskarlsen/mdcouple/internal/protocol"
	"github.com/nicholaskarlsen/mdcouple/internal/session"
)

// SystemDef is the complete system definition sent with SETUP.
type SystemDef struct {
	Units   string
	Dim     int32
	Natoms  int32
	Ntypes  int32
	BoxLo   []float64
	BoxHi   []float64
	BoxTilt []float64
	Types   []int32
	Coords  []float64
	Charges []float64
}

// StepResult is the server's evaluation of one configuration.
type StepResult struct {
	Forces []float64
	Energy float64
	Virial []float64
}

// Client drives SETUP/STEP exchanges over an established client-role
// session. Not safe for concurrent use; the protocol allows exactly one
// outstanding request.
type Client struct {
	sess   *session.Session
	log    zerolog.Logger
	natoms int32
}

func New(sess *session.Session, logger zerolog.Logger) *Client {
	return &Client{
		sess: sess,
		log:  logger.With().Str("session_id", sess.ID()).Logger(),
	}
}

// Setup sends the full system definition and returns the evaluation of
// the initial configuration.
func (c *Client) Setup(def SystemDef) (StepResult, error) {
	if def.Natoms <= 0 {
		return StepResult{}, fmt.Errorf("client: natoms must be positive, got %d", def.Natoms)
	}
	if len(def.Coords) != 3*int(def.Natoms) {
		return StepResult{}, fmt.Errorf("client: coords length %d, want %d", len(def.Coords), 3*def.Natoms)
	}

	fields := []protocol.Field{
		protocol.NewStringField(protocol.FieldUnits, def.Units),
		protocol.NewScalarInt32Field(protocol.FieldDim, def.Dim),
		protocol.NewScalarInt32Field(protocol.FieldNatoms, def.Natoms),
		protocol.NewScalarInt32Field(protocol.FieldNtypes, def.Ntypes),
		protocol.NewFloatField(protocol.FieldBoxLo, def.BoxLo),
		protocol.NewFloatField(protocol.FieldBoxHi, def.BoxHi),
	}
	if len(def.BoxTilt) > 0 {
		fields = append(fields, protocol.NewFloatField(protocol.FieldBoxTilt, def.BoxTilt))
	}
	fields = append(fields,
		protocol.NewInt32Field(protocol.FieldTypes, def.Types),
		protocol.NewFloatField(protocol.FieldCoords, def.Coords),
	)
	if len(def.Charges) > 0 {
		fields = append(fields, protocol.NewFloatField(protocol.FieldCharge, def.Charges))
	}

	c.natoms = def.Natoms
	return c.roundTrip(&protocol.Message{ID: protocol.MsgSetup, Fields: fields})
}

// Step sends updated coordinates for the system defined at SETUP.
func (c *Client) Step(coords []float64) (StepResult, error) {
	if c.natoms == 0 {
		return StepResult{}, fmt.Errorf("client: Step before Setup")
	}
	if len(coords) != 3*int(c.natoms) {
		return StepResult{}, fmt.Errorf("client: coords length %d, want %d", len(coords), 3*c.natoms)
	}
	msg := &protocol.Message{
		ID:     protocol.MsgStep,
		Fields: []protocol.Field{protocol.NewFloatField(protocol.FieldCoords, coords)},
	}
	return c.roundTrip(msg)
}

// StepBox sends updated coordinates together with a resized box.
func (c *Client) StepBox(coords, boxLo, boxHi []float64) (StepResult, error) {
	if c.natoms == 0 {
		return StepResult{}, fmt.Errorf("client: StepBox before Setup")
	}
	if len(coords) != 3*int(c.natoms) {
		return StepResult{}, fmt.Errorf("client: coords length %d, want %d", len(coords), 3*c.natoms)
	}
	if len(boxLo) != 3 || len(boxHi) != 3 {
		return StepResult{}, fmt.Errorf("client: box corners need 3 components, got %d and %d", len(boxLo), len(boxHi))
	}
	msg := &protocol.Message{
		ID: protocol.MsgStep,
		Fields: []protocol.Field{
			protocol.NewFloatField(protocol.FieldBoxLo, boxLo),
			protocol.NewFloatField(protocol.FieldBoxHi, boxHi),
			protocol.NewFloatField(protocol.FieldCoords, coords),
		},
	}
	return c.roundTrip(msg)
}

// Close performs the clean termination handshake.
func (c *Client) Close() error {
	return c.sess.Close()
}

func (c *Client) roundTrip(msg *protocol.Message) (StepResult, error) {
	if err := c.sess.Send(msg); err != nil {
		return StepResult{}, err
	}
	reply, err := c.sess.Recv()
	if err != nil {
		return StepResult{}, err
	}
	return c.parseResult(reply)
}

func (c *Client) parseResult(msg *protocol.Message) (StepResult, error) {
	var out StepResult

	forcesField, ok := msg.Field(protocol.FieldForces)
	if !ok {
		return StepResult{}, fmt.Errorf("client: response %d carries no forces", msg.ID)
	}
	forces, err := forcesField.Floats()
	if err != nil {
		return StepResult{}, fmt.Errorf("client: forces: %w", err)
	}
	if len(forces) != 3*int(c.natoms) {
		return StepResult{}, fmt.Errorf("client: %d force components, want %d", len(forces), 3*c.natoms)
	}
	out.Forces = forces

	if f, ok := msg.Field(protocol.FieldEnergy); ok {
		if out.Energy, err = f.Float(); err != nil {
			return StepResult{}, fmt.Errorf("client: energy: %w", err)
		}
	}
	if f, ok := msg.Field(protocol.FieldVirial); ok {
		if out.Virial, err = f.Floats(); err != nil {
			return StepResult{}, fmt.Errorf("client: virial: %w", err)
		}
	}
	return out, nil
}
