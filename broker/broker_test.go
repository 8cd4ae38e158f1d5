package main

import (
	"net"
	"net/rpc"
	"testing"
	"time"

	"github.com/asynclife/conway/stubs"
	"github.com/asynclife/conway/util"
)

func TestBuildStripBounded(t *testing.T) {
	world := [][]uint8{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 4},
	}
	top := buildStrip(world, 0, 2, false)
	if len(top) != 4 {
		t.Fatalf("strip has %d rows, want 4", len(top))
	}
	if top[0][0] != 0 {
		t.Error("bounded top halo should be dead")
	}
	if top[1][0] != 1 || top[2][0] != 2 {
		t.Error("strip interior rows wrong")
	}
	if top[3][0] != 3 {
		t.Error("halo below should be the next world row")
	}

	bottom := buildStrip(world, 2, 2, false)
	if bottom[0][0] != 2 {
		t.Error("halo above should be the previous world row")
	}
	if bottom[3][0] != 0 {
		t.Error("bounded bottom halo should be dead")
	}
}

func TestBuildStripWrap(t *testing.T) {
	world := [][]uint8{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 4},
	}
	top := buildStrip(world, 0, 2, true)
	if top[0][0] != 4 {
		t.Error("wrap top halo should be the last world row")
	}
	bottom := buildStrip(world, 2, 2, true)
	if bottom[3][0] != 1 {
		t.Error("wrap bottom halo should be the first world row")
	}
}

// golWorkerStub answers CalculateNewState in-process, bounded edges only.
type golWorkerStub struct{}

func (w *golWorkerStub) CalculateNewState(req stubs.RequestToWorker, res *stubs.ResponseFromWorker) error {
	if req.Stop {
		return nil
	}
	strip := req.Strip.Unpack()
	height := len(strip) - 2
	width := req.Strip.Width

	aliveNum := 0
	newStrip := make([][]uint8, height)
	for y := 1; y <= height; y++ {
		line := make([]uint8, width)
		for x := 0; x < width; x++ {
			neighbours := 0
			for i := -1; i <= 1; i++ {
				for j := -1; j <= 1; j++ {
					if i == 0 && j == 0 {
						continue
					}
					nx := x + j
					if nx < 0 || nx >= width {
						continue
					}
					if strip[y+i][nx] == 255 {
						neighbours++
					}
				}
			}
			if strip[y][x] == 255 {
				if neighbours == 2 || neighbours == 3 {
					line[x] = 255
					aliveNum++
				}
			} else if neighbours == 3 {
				line[x] = 255
				aliveNum++
			}
		}
		newStrip[y-1] = line
	}
	res.NewStrip = util.Pack(newStrip)
	res.Turn = req.Turn + 1
	res.Thread = req.Thread
	res.AliveNumber = aliveNum
	return nil
}

// startBroker serves a Broker for the given worker addresses on a loopback
// listener and returns a client dialled into it.
func startBroker(t *testing.T, workerAddrs []string) *rpc.Client {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	b := &Broker{listener: ln, workerAddrs: workerAddrs}
	server := rpc.NewServer()
	if err := server.RegisterName("Broker", b); err != nil {
		t.Fatal(err)
	}
	go server.Accept(ln)

	client, err := rpc.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func startWorker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	server := rpc.NewServer()
	if err := server.RegisterName("GolWorker", &golWorkerStub{}); err != nil {
		t.Fatal(err)
	}
	go server.Accept(ln)
	return ln.Addr().String()
}

func getNewData(t *testing.T, client *rpc.Client) *stubs.ResponseFromBroker {
	t.Helper()
	res := new(stubs.ResponseFromBroker)
	call := client.Go(stubs.GetNewData, stubs.RequestNewData{}, res, nil)
	select {
	case <-call.Done:
		if call.Error != nil {
			t.Fatal(call.Error)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handshake stuck waiting for GetNewData")
	}
	return res
}

func assertAlive(t *testing.T, world [][]uint8, want []util.Cell) {
	t.Helper()
	got := util.AliveCells(world)
	if len(got) != len(want) {
		t.Fatalf("alive cells = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("alive cells = %v, want %v", got, want)
		}
	}
}

// Two full turns of a blinker through the RunAllTurns/GetNewData handshake,
// with a stale Quit queued beforehand that must not abort the run.
func TestBrokerHandshake(t *testing.T) {
	worker := startWorker(t)
	client := startBroker(t, []string{worker})

	if err := client.Call(stubs.Quit, stubs.RequestQuit{Quit: true}, new(stubs.ResponseFromBroker)); err != nil {
		t.Fatal(err)
	}

	world := make([][]uint8, 5)
	for y := range world {
		world[y] = make([]uint8, 5)
	}
	for x := 1; x <= 3; x++ {
		world[2][x] = 255
	}

	req := stubs.RequestToBroker{
		Params: stubs.Params{Turns: 2, Threads: 2, ImageWidth: 5, ImageHeight: 5},
		World:  util.Pack(world),
	}
	run := client.Go(stubs.RunAllTurns, req, new(stubs.ResponseFromBroker), nil)

	res := getNewData(t, client)
	if res.Turn != 1 {
		t.Fatalf("first handoff at turn %d, want 1", res.Turn)
	}
	if res.AliveNumber != 3 {
		t.Errorf("AliveNumber = %d, want 3", res.AliveNumber)
	}
	assertAlive(t, res.NewWorld.Unpack(), []util.Cell{
		{X: 2, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 3},
	})

	res = getNewData(t, client)
	if res.Turn != 2 {
		t.Fatalf("second handoff at turn %d, want 2", res.Turn)
	}
	assertAlive(t, res.NewWorld.Unpack(), []util.Cell{
		{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2},
	})

	select {
	case <-run.Done:
		if run.Error != nil {
			t.Fatal(run.Error)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunAllTurns did not return")
	}
}

func TestBrokerQuitAborts(t *testing.T) {
	worker := startWorker(t)
	client := startBroker(t, []string{worker})

	world := make([][]uint8, 4)
	for y := range world {
		world[y] = make([]uint8, 4)
	}
	req := stubs.RequestToBroker{
		Params: stubs.Params{Turns: 100, Threads: 1, ImageWidth: 4, ImageHeight: 4},
		World:  util.Pack(world),
	}
	run := client.Go(stubs.RunAllTurns, req, new(stubs.ResponseFromBroker), nil)

	if res := getNewData(t, client); res.Turn != 1 {
		t.Fatalf("first handoff at turn %d, want 1", res.Turn)
	}
	if err := client.Call(stubs.Quit, stubs.RequestQuit{Quit: true}, new(stubs.ResponseFromBroker)); err != nil {
		t.Fatal(err)
	}
	if res := getNewData(t, client); res.Turn != 2 {
		t.Fatalf("handoff after quit at turn %d, want 2", res.Turn)
	}

	select {
	case <-run.Done:
		if run.Error != nil {
			t.Fatal(run.Error)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunAllTurns did not stop after Quit")
	}
}

// A worker dying mid-turn must fail the turn and leave the world untouched,
// rather than reassembling a partial grid.
func TestRunTurnWorkerFailure(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	serverConn.Close()
	client := rpc.NewClient(clientConn)
	defer client.Close()

	world := make([][]uint8, 4)
	for y := range world {
		world[y] = make([]uint8, 4)
	}
	world[1][1] = 255
	b := &Broker{world: world}

	idle := make(chan *rpc.Client, 1)
	idle <- client

	p := stubs.Params{Threads: 1, ImageWidth: 4, ImageHeight: 4}
	if err := b.runTurn(p, idle); err == nil {
		t.Fatal("runTurn returned nil error for a dead worker")
	}
	if len(b.world) != 4 {
		t.Fatalf("world has %d rows after failed worker call, want 4", len(b.world))
	}
	if b.turn != 0 {
		t.Errorf("turn advanced to %d on failure", b.turn)
	}

	// the world must still be valid input for a retry
	if err := b.runTurn(p, idle); err == nil {
		t.Fatal("retry returned nil error for a dead worker")
	}
	if len(b.world) != 4 {
		t.Fatalf("world has %d rows after retry, want 4", len(b.world))
	}
}

// With no reachable worker the run must fail the pending GetNewData instead of
// leaving the distributor blocked.
func TestBrokerSurfacesWorkerFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	deadAddr := ln.Addr().String()
	ln.Close()

	client := startBroker(t, []string{deadAddr})

	world := make([][]uint8, 4)
	for y := range world {
		world[y] = make([]uint8, 4)
	}
	req := stubs.RequestToBroker{
		Params: stubs.Params{Turns: 10, Threads: 1, ImageWidth: 4, ImageHeight: 4},
		World:  util.Pack(world),
	}
	run := client.Go(stubs.RunAllTurns, req, new(stubs.ResponseFromBroker), nil)

	res := new(stubs.ResponseFromBroker)
	call := client.Go(stubs.GetNewData, stubs.RequestNewData{}, res, nil)
	select {
	case <-call.Done:
		if call.Error == nil {
			t.Fatal("GetNewData returned no error with no workers reachable")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("GetNewData stuck with no workers reachable")
	}

	select {
	case <-run.Done:
		if run.Error == nil {
			t.Fatal("RunAllTurns returned no error with no workers reachable")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunAllTurns did not return")
	}
}
