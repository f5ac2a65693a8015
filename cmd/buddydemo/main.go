package main

import (
	"fmt"
	"log"

	"github.com/vmalloc/buddypage"
)

func main() {
	if err := buddy.Init(); err != nil {
		log.Fatal(err)
	}

	fmt.Println(buddy.Report())

	p, ok := buddy.Allocate(4)
	if !ok {
		log.Fatal("allocate(4) failed")
	}
	fmt.Printf("allocated 4 pages at %#x\n", p)

	q, ok := buddy.Allocate(1)
	if !ok {
		log.Fatal("allocate(1) failed")
	}
	fmt.Printf("allocated 1 page at %#x\n", q)

	fmt.Println(buddy.Report())

	buddy.Free(p)
	buddy.Free(q)

	fmt.Println(buddy.Report())
}
