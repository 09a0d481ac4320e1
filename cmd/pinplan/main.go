// Command pinplan applies a board plan to a simulated STM32F411 and prints
// the resulting register file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"periphkit-go/config"
	"periphkit-go/drivers/gpio"
	"periphkit-go/periph/regs"
)

func main() {
	var (
		planPath  string
		lockDelay int
		all       bool
		echo      bool
	)
	flag.StringVar(&planPath, "plan", "", "board plan (.yaml or .json)")
	flag.IntVar(&lockDelay, "lock-delay", 0, "polls before a simulated oscillator reports ready")
	flag.BoolVar(&all, "all", false, "print registers still at zero")
	flag.BoolVar(&echo, "echo", false, "print the parsed plan as YAML")
	flag.Parse()

	if planPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	plan, err := config.Load(planPath)
	if err != nil {
		log.Fatalf("%s: %v", planPath, err)
	}
	if echo {
		out, err := plan.YAML()
		if err != nil {
			log.Fatal("yaml: ", err)
		}
		os.Stdout.Write(out)
	}

	m := regs.NewSimMap()
	m.SetLockDelay(lockDelay)
	board, err := config.Apply(plan, m, gpio.NewAllocationTable())
	if err != nil {
		log.Fatalf("apply %s: %v", planPath, err)
	}
	defer board.Close()

	fmt.Printf("board %s: sysclk %d Hz\n", board.Name, board.Clock.SysClockHz())
	for _, k := range board.Keys() {
		p, _ := board.Pin(k)
		fmt.Printf("  %-10s %s %-9s pull=%s\n", k, p.Name(), p.Mode(), p.Pull())
	}
	fmt.Println()
	for _, e := range m.Entries() {
		v := e.Reg.Get()
		if v == 0 && !all {
			continue
		}
		fmt.Printf("%-16s 0x%08X  0x%08X\n", e.Name, e.Addr, v)
	}
	log.Printf("%d register writes", m.Writes())
}
