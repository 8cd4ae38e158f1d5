package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"os"
	"strings"
	"sync"

	"github.com/asynclife/conway/stubs"
	"github.com/asynclife/conway/util"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Broker splits the world into horizontal strips and farms each strip out to
// an idle gol worker, reassembling the result after every turn.
type Broker struct {
	listener    net.Listener
	workerAddrs []string

	world    [][]uint8
	aliveNum int
	turn     int
	runErr   error
}

// done/handoff implement the per-turn handshake with the distributor: after a
// turn completes the broker blocks until GetNewData has served it.
var done = make(chan bool)
var quit = make(chan bool, 1)
var handoff sync.WaitGroup

// buildStrip cuts rows [start, start+height) out of the world and adds the
// halo row above and below. In wrap mode halos come from the opposite edge; in
// bounded mode out-of-grid halos are dead rows.
func buildStrip(world [][]uint8, start, height int, wrap bool) [][]uint8 {
	width := len(world[0])
	total := len(world)
	strip := make([][]uint8, 0, height+2)

	haloAbove := make([]uint8, width)
	if start > 0 {
		haloAbove = world[start-1]
	} else if wrap {
		haloAbove = world[total-1]
	}
	strip = append(strip, haloAbove)

	strip = append(strip, world[start:start+height]...)

	haloBelow := make([]uint8, width)
	if start+height < total {
		haloBelow = world[start+height]
	} else if wrap {
		haloBelow = world[0]
	}
	return append(strip, haloBelow)
}

// runTurn farms every strip to an idle worker and assembles the next world.
// If any worker call fails the world is left untouched and the error returned,
// so the run aborts instead of continuing on a partial grid.
func (b *Broker) runTurn(p stubs.Params, idle chan *rpc.Client) error {
	rows := util.CalcSharing(p.ImageHeight, p.Threads)
	results := make([][][]uint8, p.Threads)
	aliveCounts := make([]int, p.Threads)

	var wg sync.WaitGroup
	var mutex sync.Mutex
	var firstErr error

	start := 0
	for t := 0; t < p.Threads; t++ {
		request := stubs.RequestToWorker{
			Strip:  util.Pack(buildStrip(b.world, start, rows[t], p.Wrap)),
			Turn:   b.turn,
			Thread: t,
			Wrap:   p.Wrap,
		}
		start += rows[t]

		client := <-idle
		wg.Add(1)
		go func(client *rpc.Client, request stubs.RequestToWorker) {
			defer wg.Done()
			response := new(stubs.ResponseFromWorker)
			err := client.Call(stubs.CalculateNewState, request, response)
			mutex.Lock()
			if err != nil {
				logger.Error("worker call failed", "thread", request.Thread, "error", err)
				if firstErr == nil {
					firstErr = fmt.Errorf("worker %d: %w", request.Thread, err)
				}
			} else {
				results[response.Thread] = response.NewStrip.Unpack()
				aliveCounts[response.Thread] = response.AliveNumber
			}
			mutex.Unlock()
			idle <- client
		}(client, request)
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	newWorld := make([][]uint8, 0, p.ImageHeight)
	alive := 0
	for t := 0; t < p.Threads; t++ {
		newWorld = append(newWorld, results[t]...)
		alive += aliveCounts[t]
	}
	b.world = newWorld
	b.aliveNum = alive
	b.turn++
	return nil
}

// failRun surfaces err to the distributor through the per-turn handshake, so
// its pending GetNewData fails instead of blocking forever.
func (b *Broker) failRun(err error) error {
	b.runErr = err
	handoff.Add(1)
	done <- true
	handoff.Wait()
	return err
}

// RunAllTurns drives the whole simulation, handing each completed turn to
// GetNewData before starting the next.
func (b *Broker) RunAllTurns(req stubs.RequestToBroker, res *stubs.ResponseFromBroker) (err error) {
	clients := make([]*rpc.Client, 0, len(b.workerAddrs))
	for _, addr := range b.workerAddrs {
		client, err := rpc.Dial("tcp", addr)
		if err != nil {
			logger.Error("cannot reach worker", "addr", addr, "error", err)
			continue
		}
		clients = append(clients, client)
	}
	defer func() {
		for _, client := range clients {
			client.Close()
		}
	}()

	// k pressed on the client: stop the workers, then stop listening.
	if req.Stop {
		for _, client := range clients {
			request := stubs.RequestToWorker{Stop: true}
			response := new(stubs.ResponseFromWorker)
			client.Call(stubs.CalculateNewState, request, response)
		}
		logger.Info("shutting down")
		b.listener.Close()
		return
	}

	// a Quit left over from an earlier run must not abort this one
	select {
	case <-quit:
	default:
	}

	b.turn = 0
	b.aliveNum = 0
	b.runErr = nil

	if len(clients) == 0 {
		logger.Error("no workers available")
		return b.failRun(errors.New("no workers available"))
	}

	idle := make(chan *rpc.Client, len(clients))
	for _, client := range clients {
		idle <- client
	}

	b.world = req.World.Unpack()
	logger.Info("run started",
		"width", req.Params.ImageWidth,
		"height", req.Params.ImageHeight,
		"turns", req.Params.Turns,
		"threads", req.Params.Threads,
		"workers", len(clients))

	for b.turn < req.Params.Turns {
		if err := b.runTurn(req.Params, idle); err != nil {
			logger.Error("run aborted by worker failure", "turn", b.turn, "error", err)
			return b.failRun(err)
		}

		handoff.Add(1)
		done <- true
		handoff.Wait()
		select {
		case <-quit:
			logger.Info("run aborted", "turn", b.turn)
			return
		default:
		}
	}
	logger.Info("run complete", "turns", b.turn, "alive", b.aliveNum)
	return
}

// GetNewData serves the most recently completed turn to the distributor, or
// the error that ended the run.
func (b *Broker) GetNewData(req stubs.RequestNewData, res *stubs.ResponseFromBroker) (err error) {
	<-done
	defer handoff.Done()
	if b.runErr != nil {
		return b.runErr
	}
	res.Turn = b.turn
	res.AliveNumber = b.aliveNum
	res.NewWorld = util.Pack(b.world)
	return
}

func (b *Broker) Quit(req stubs.RequestQuit, res *stubs.ResponseFromBroker) (err error) {
	quit <- req.Quit
	return
}

func main() {
	pAddr := flag.String("port", "8030", "Port to listen on")
	workers := flag.String("workers", "127.0.0.1:8040,127.0.0.1:8050", "Comma-separated gol worker addresses")
	flag.Parse()

	broker := &Broker{workerAddrs: strings.Split(*workers, ",")}
	listener, err := net.Listen("tcp", ":"+*pAddr)
	if err != nil {
		logger.Error("listen failed", "port", *pAddr, "error", err)
		os.Exit(1)
	}
	broker.listener = listener
	defer listener.Close()

	rpc.Register(broker)
	logger.Info("broker listening", "port", *pAddr, "workers", *workers)
	rpc.Accept(listener)
}
