// Package tracker implements Trackers, which observe the steps of a
// rollout and save summary data after the rollout has finished
package tracker

import (
	"encoding/gob"
	"log"
	"os"

	"sfneuman.com/gorollout/trajectory"
)

// Interface Tracker observes rollout data and saves the data after
// the rollout has finished. A Tracker is a driver Listener: it is
// registered with a Driver and notified of every trajectory step the
// driver records.
type Tracker interface {
	Listen(trajectory.Step)
	Save()
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) []float64 {
	// Open file
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	// Create the decoder and the variable to store the data in
	dec := gob.NewDecoder(file)
	var data []float64

	// Decode the data
	err = dec.Decode(&data)
	if err != nil {
		log.Fatalf("could not decode data: %v", err)
	}

	return data
}
