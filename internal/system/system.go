package system

import (
	"fmt"
	"log"
	"syscall"
)

// InitResourceLimits raises the open-file limit so the websocket hub can
// hold many client connections. Failure is logged, not fatal.
func InitResourceLimits(want uint64) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read the open-file limit: %v", err)
		return
	}

	if rLimit.Cur >= want {
		return
	}
	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise the open-file limit: %v", err)
	} else {
		fmt.Printf("[*] Open-file limit raised to %d\n", rLimit.Cur)
	}
}
