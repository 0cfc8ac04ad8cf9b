// Command sample demonstrates the ready → halt → join lifecycle on its
// own, with no networking involved.
package main

import (
	"log"
	"time"

	"github.com/stratumproto/proxywire/halt"
)

func main() {
	supervisor := halt.New()
	supervisor.HaltOnSignal()

	for i := 0; i < 5; i++ {
		id := i
		supervisor.Spawn(func(tw halt.Tripwire) {
			select {
			case <-tw.Done():
				log.Printf("worker %d: cancelled", id)
			case <-time.After(2 * time.Second):
				log.Printf("worker %d: finished naturally", id)
			}
		})
	}
	supervisor.Ready()

	if err := supervisor.Join(10 * time.Second); err != nil {
		log.Println("join returned:", err)
		return
	}
	log.Println("all workers joined cleanly")
}
