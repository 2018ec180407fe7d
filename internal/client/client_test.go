package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/nicholaskarlsen/mdcouple/internal/protocol"
	"github.com/nicholaskarlsen/mdcouple/internal/session"
	"github.com/nicholaskarlsen/mdcouple/internal/testutil/testlog"
	"github.com/nicholaskarlsen/mdcouple/internal/transport"
	"github.com/nicholaskarlsen/mdcouple/internal/worker"
)

// startWorker wires a worker loop to the far end of an in-memory pipe and
// returns a ready Client against it.
func startWorker(t *testing.T, eval worker.Evaluator) (*Client, chan error) {
	t.Helper()
	a, b := net.Pipe()
	cfg := transport.DefaultConfig()
	logger := testlog.Logger(t)

	type result struct {
		sess *session.Session
		err  error
	}
	clientc := make(chan result, 1)
	serverc := make(chan result, 1)
	go func() {
		sess, err := session.Open(transport.NewStream(a, cfg), transport.RoleClient, protocol.VariantMD, logger)
		clientc <- result{sess, err}
	}()
	go func() {
		sess, err := session.Open(transport.NewStream(b, cfg), transport.RoleServer, protocol.VariantMD, logger)
		serverc <- result{sess, err}
	}()

	clientRes := <-clientc
	serverRes := <-serverc
	if clientRes.err != nil {
		t.Fatalf("client open: %v", clientRes.err)
	}
	if serverRes.err != nil {
		t.Fatalf("server open: %v", serverRes.err)
	}

	loop := worker.NewLoop(serverRes.sess, eval, logger, worker.Config{Node: "worker-test"})
	loopc := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		loopc <- loop.Run(context.Background())
		close(done)
	}()

	cl := New(clientRes.sess, logger)
	t.Cleanup(func() {
		// Close is idempotent; join the loop goroutine so its final logs
		// land before the test returns.
		cl.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Errorf("worker loop did not exit")
		}
	})
	return cl, loopc
}

func twoAtomDef() SystemDef {
	return SystemDef{
		Units:  "lj",
		Dim:    3,
		Natoms: 2,
		Ntypes: 1,
		BoxLo:  []float64{0, 0, 0},
		BoxHi:  []float64{10, 10, 10},
		Types:  []int32{1, 1},
		Coords: []float64{0, 0, 0, 1.5, 0, 0},
	}
}

func TestClientSetupStepClose(t *testing.T) {
	eval := worker.EvaluatorFunc(func(_ context.Context, in worker.StepInput) (worker.StepOutput, error) {
		forces := make([]float64, len(in.Coords))
		for i := range forces {
			forces[i] = 2 * in.Coords[i]
		}
		return worker.StepOutput{
			Forces: forces,
			Energy: -4.5,
			Virial: []float64{1, 1, 1, 0, 0, 0},
		}, nil
	})
	c, loopc := startWorker(t, eval)

	res, err := c.Setup(twoAtomDef())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if res.Energy != -4.5 {
		t.Fatalf("energy = %v", res.Energy)
	}
	if len(res.Forces) != 6 || res.Forces[3] != 3.0 {
		t.Fatalf("forces = %v", res.Forces)
	}
	if len(res.Virial) != 6 {
		t.Fatalf("virial = %v", res.Virial)
	}

	res, err = c.Step([]float64{0, 0, 0, 2.0, 0, 0})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Forces[3] != 4.0 {
		t.Fatalf("step forces = %v", res.Forces)
	}

	res, err = c.StepBox([]float64{0, 0, 0, 2.0, 0, 0}, []float64{0, 0, 0}, []float64{20, 20, 20})
	if err != nil {
		t.Fatalf("stepbox: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case err := <-loopc:
		if err != nil {
			t.Fatalf("worker loop: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("worker loop did not exit")
	}
}

func TestClientValidatesShapes(t *testing.T) {
	eval := worker.EvaluatorFunc(func(_ context.Context, in worker.StepInput) (worker.StepOutput, error) {
		return worker.StepOutput{Forces: make([]float64, len(in.Coords)), Virial: make([]float64, 6)}, nil
	})
	c, _ := startWorker(t, eval)
	defer c.Close()

	if _, err := c.Step([]float64{1, 2, 3}); err == nil {
		t.Fatalf("expected error for Step before Setup")
	}

	def := twoAtomDef()
	def.Coords = def.Coords[:4]
	if _, err := c.Setup(def); err == nil {
		t.Fatalf("expected error for short coords")
	}

	if _, err := c.Setup(twoAtomDef()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := c.Step([]float64{1}); err == nil {
		t.Fatalf("expected error for wrong step coords length")
	}
	if _, err := c.StepBox([]float64{1}, []float64{0, 0, 0}, []float64{1, 1, 1}); err == nil {
		t.Fatalf("expected error for wrong stepbox coords length")
	}
	if _, err := c.StepBox(twoAtomDef().Coords, []float64{0, 0}, []float64{1, 1, 1}); err == nil {
		t.Fatalf("expected error for short box corner")
	}
}

func TestClientSurfacesComputeFailure(t *testing.T) {
	eval := worker.EvaluatorFunc(func(_ context.Context, in worker.StepInput) (worker.StepOutput, error) {
		return worker.StepOutput{}, errors.New("no convergence")
	})
	c, _ := startWorker(t, eval)
	defer c.Close()

	_, err := c.Setup(twoAtomDef())
	var abnormal *session.AbnormalError
	if !errors.As(err, &abnormal) {
		t.Fatalf("expected AbnormalError, got %v", err)
	}
	if abnormal.Reason != "no convergence" {
		t.Fatalf("reason = %q", abnormal.Reason)
	}
}
