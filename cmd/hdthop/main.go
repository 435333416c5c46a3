package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/quadstore/hdthop/internal/idspace"
	"github.com/quadstore/hdthop/pkg/hdt"
	"github.com/quadstore/hdthop/pkg/rdf"
	"github.com/quadstore/hdthop/pkg/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: hdthop <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  demo                  - run a demo over sample data")
		fmt.Println("  search <s> <p> <o>    - triple pattern lookup (empty string = wildcard)")
		fmt.Println("  hops <seed> <n>       - compute an n-hop neighborhood around a seed IRI")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		runDemo()
	case "search":
		if len(os.Args) != 5 {
			fmt.Println("Usage: hdthop search <s> <p> <o>")
			os.Exit(1)
		}
		runSearch(os.Args[2], os.Args[3], os.Args[4])
	case "hops":
		if len(os.Args) != 4 {
			fmt.Println("Usage: hdthop hops <seed-iri> <num-hops>")
			os.Exit(1)
		}
		n, err := strconv.Atoi(os.Args[3])
		if err != nil {
			log.Fatalf("invalid num-hops: %v", err)
		}
		runHops(os.Args[2], n)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func sampleDocument() *hdt.Document {
	alice := "http://example.org/alice"
	bob := "http://example.org/bob"
	carol := "http://example.org/carol"
	knows := "http://xmlns.com/foaf/0.1/knows"
	name := "http://xmlns.com/foaf/0.1/name"

	triples := []store.TriplePattern{
		{Subject: alice, Predicate: name, Object: `"Alice"`},
		{Subject: alice, Predicate: knows, Object: bob},
		{Subject: bob, Predicate: name, Object: `"Bob"`},
		{Subject: bob, Predicate: knows, Object: carol},
		{Subject: carol, Predicate: name, Object: `"Carol"`},
		{Subject: carol, Predicate: rdf.RDFType, Object: "http://example.org/Person"},
	}

	doc, err := hdt.Open(hdt.Options{Triples: triples})
	if err != nil {
		log.Fatalf("open document: %v", err)
	}
	return doc
}

func runDemo() {
	doc := sampleDocument()
	defer doc.Close()

	fmt.Printf("triples: %d, subjects: %d, predicates: %d, objects: %d, shared: %d\n",
		doc.NTriples(), doc.NSubjects(), doc.NPredicates(), doc.NObjects(), doc.NShared())

	result, err := doc.Search("", "http://xmlns.com/foaf/0.1/knows", "", 0, 0)
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	defer result.Close()

	fmt.Println("knows edges:")
	for result.HasNext() {
		t, err := result.Next()
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		fmt.Printf("  %s %s %s\n", t.Subject, t.Predicate, t.Object)
	}
}

func runSearch(s, p, o string) {
	doc := sampleDocument()
	defer doc.Close()

	result, err := doc.Search(s, p, o, 0, 0)
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	defer result.Close()

	for result.HasNext() {
		t, err := result.Next()
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		fmt.Printf("%s %s %s\n", t.Subject, t.Predicate, t.Object)
	}
}

func runHops(seedIRI string, numHops int) {
	doc := sampleDocument()
	defer doc.Close()

	cfg, err := doc.ConfigureHops("", false, numHops, nil, true)
	if err != nil {
		log.Fatalf("configure hops: %v", err)
	}

	seed := doc.StringToGlobalID(seedIRI)
	if seed == 0 {
		log.Fatalf("unknown seed term: %s", seedIRI)
	}

	result, err := doc.ComputeAllHops(cfg, []idspace.ContinuousID{seed})
	if err != nil {
		log.Fatalf("compute hops: %v", err)
	}

	fmt.Printf("vertices: %d\n", len(result.Vertices))
	for _, group := range result.Groups {
		predicate := doc.IDToString(group.Predicate, store.Predicate)
		fmt.Printf("predicate %s: %d edges\n", predicate, len(group.Edges))
		for _, e := range group.Edges {
			fmt.Printf("  %s -> %s\n",
				doc.GlobalIDToString(result.Vertices[e.LocalS]),
				doc.GlobalIDToString(result.Vertices[e.LocalO]))
		}
	}
}
