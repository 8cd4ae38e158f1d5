// Package stubs defines the RPC contract between the distributor, the broker
// and the gol workers.
package stubs

import "github.com/asynclife/conway/util"

var CalculateNewState = "GolWorker.CalculateNewState"
var RunAllTurns = "Broker.RunAllTurns"
var GetNewData = "Broker.GetNewData"
var Quit = "Broker.Quit"

// Params mirrors the simulation parameters the broker needs to run all turns.
type Params struct {
	Turns       int
	Threads     int
	ImageWidth  int
	ImageHeight int
	Wrap        bool
}

// RequestToWorker carries one strip of the world. Strip holds the strip rows
// with the halo row above as row 0 and the halo row below as the last row,
// packed one bit per cell.
type RequestToWorker struct {
	Strip  util.PackedGrid
	Turn   int
	Thread int
	Wrap   bool
	Stop   bool
}

type ResponseFromWorker struct {
	NewStrip    util.PackedGrid
	Turn        int
	Thread      int
	AliveNumber int
}

type RequestToBroker struct {
	Params Params
	World  util.PackedGrid
	Stop   bool
}

type RequestNewData struct {
}

type RequestQuit struct {
	Quit bool
}

type ResponseFromBroker struct {
	NewWorld    util.PackedGrid
	Turn        int
	AliveNumber int
}
