package main

import (
	"flag"
	"log/slog"
	"net"
	"net/rpc"
	"os"

	"github.com/asynclife/conway/stubs"
	"github.com/asynclife/conway/util"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

const alive = 255
const dead = 0

type GolWorker struct {
	listener net.Listener
}

func mod(x, m int) int {
	return (x + m) % m
}

// CalculateNewState advances one strip of the world by a single turn. The
// strip arrives with its halo row above as row 0 and below as the last row;
// only the interior rows are computed and returned.
func (w *GolWorker) CalculateNewState(req stubs.RequestToWorker, res *stubs.ResponseFromWorker) (err error) {
	if req.Stop {
		logger.Info("shutting down")
		w.listener.Close()
		return
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
					if req.Wrap {
						nx = mod(nx, width)
					} else if nx < 0 || nx >= width {
						continue
					}
					if strip[y+i][nx] == alive {
						neighbours++
					}
				}
			}

			if strip[y][x] == alive {
				if neighbours < 2 || neighbours > 3 {
					line[x] = dead
				} else {
					line[x] = alive
					aliveNum++
				}
			} else {
				if neighbours == 3 {
					line[x] = alive
					aliveNum++
				} else {
					line[x] = dead
				}
			}
		}
		newStrip[y-1] = line
	}

	res.NewStrip = util.Pack(newStrip)
	res.Turn = req.Turn + 1
	res.Thread = req.Thread
	res.AliveNumber = aliveNum
	return
}

func main() {
	pAddr := flag.String("port", "8040", "Port to listen on")
	flag.Parse()

	worker := &GolWorker{}
	listener, err := net.Listen("tcp", ":"+*pAddr)
	if err != nil {
		logger.Error("listen failed", "port", *pAddr, "error", err)
		os.Exit(1)
	}
	worker.listener = listener
	defer listener.Close()

	rpc.Register(worker)
	logger.Info("gol worker listening", "port", *pAddr)
	rpc.Accept(listener)
}
