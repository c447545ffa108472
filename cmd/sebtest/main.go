// Command sebtest serves a small demo application through the bridge,
// hosted on net/http with httprouter in front.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/profile"

	"github.com/linkdata/seb"
)

var (
	listenAddr = flag.String("addr", ":8080", "address to listen on")
	cpuprofile = flag.Bool("cpuprofile", false, "write a CPU profile on exit")
)

// echoApp reads the full request body and echoes it back along with the
// request line, exercising the blocking read path.
func echoApp(req *seb.Request) (*seb.Response, error) {
	body, err := req.Body.ReadAll()
	if err != nil {
		return nil, err
	}
	resp := seb.NewResponse()
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.SetText(
		fmt.Sprintf("%s %s?%s\n", req.Method(), req.Path(), req.Environ[seb.EnvQueryString]),
		string(body),
	)
	return resp, nil
}

// streamApp streams a counted sequence of chunks of unknown length,
// exercising the terminal frame path.
func streamApp(req *seb.Request) (*seb.Response, error) {
	count, err := strconv.Atoi(req.Environ[seb.EnvQueryString])
	if err != nil || count < 1 {
		count = 10
	}
	ch := make(chan []byte)
	go func() {
		defer close(ch)
		for i := 0; i < count; i++ {
			ch <- []byte(fmt.Sprintf("chunk %d\n", i))
		}
	}()
	resp := seb.NewResponse()
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.SetBodyChan(ch)
	return resp, nil
}

func main() {
	flag.Parse()
	if *cpuprofile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	router := httprouter.New()
	echo := &seb.Gateway{App: echoApp}
	router.Handler(http.MethodGet, "/echo", echo)
	router.Handler(http.MethodPost, "/echo", echo)
	router.Handler(http.MethodGet, "/stream", &seb.Gateway{App: streamApp})

	log.Print("sebtest listening on ", *listenAddr)
	log.Fatal(http.ListenAndServe(*listenAddr, router))
}
