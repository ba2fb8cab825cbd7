package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akesling/galaxypad/engine"
	"github.com/akesling/galaxypad/lang/galaxy"
	"github.com/akesling/galaxypad/syntax"
	"github.com/akesling/galaxypad/vector"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var debug bool

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	os.Exit(1)
}

func main() {
	var err error
	defer func() { atExit(err) }()

	defsPath := flag.String("defs", "galaxy.txt", "Galaxy definitions `file` to load")
	remoteURL := flag.String("remote", "", "alien server `endpoint` to POST modulations to; empty disables remote exchange")
	apiKey := flag.String("apikey", "", "API `key` sent as the remote endpoint's apiKey query parameter")
	timeout := flag.Duration("timeout", 10*time.Second, "per-exchange remote request timeout")
	budget := flag.Int("budget", 2_000_000, "reducer step budget per galaxy evaluation, 0 for unlimited")
	noRaw := flag.Bool("noraw", false, "disable raw terminal IO for click input")
	listPrimitives := flag.Bool("list-primitives", false, "print the reducer's built-in operator names and exit")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics and full-stacktrace error reporting")
	flag.Parse()

	if *listPrimitives {
		fmt.Println(strings.Join(engine.PrimitiveNames(), "\n"))
		return
	}

	log := logrus.New()
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}

	var env syntax.Environment
	env, err = syntax.LoadDefinitions(*defsPath)
	if err != nil {
		err = errors.Wrapf(err, "loading definitions from %q", *defsPath)
		return
	}

	var remote galaxy.Remote
	if *remoteURL != "" {
		remote = galaxy.HTTPRemote(galaxy.HTTPRemoteConfig{
			Endpoint: *remoteURL,
			APIKey:   *apiKey,
			Timeout:  *timeout,
			Client:   http.DefaultClient,
		}, log)
	}
	driver := galaxy.New(env, *budget, remote, log)

	var tearDown func()
	if !*noRaw {
		tearDown, err = setRawIO()
		if err != nil {
			log.WithError(err).Warn("failed to switch terminal to raw mode, continuing with line-buffered input")
			err = nil
		} else {
			defer tearDown()
		}
	}

	ctx := context.Background()
	state := vector.View(vector.List(nil))

	var images vector.View
	state, images, err = driver.Interact(ctx, state, vector.List(nil))
	if err != nil {
		err = errors.Wrap(err, "initial interact")
		return
	}
	printImages(images)

	in := bufio.NewReader(os.Stdin)
	for {
		var line string
		line, err = in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return
		}
		x, y, perr := parseClick(line)
		if perr != nil {
			log.WithError(perr).Warn("ignoring malformed click line")
			continue
		}
		event := vector.Pair{Head: vector.IntN(int64(x)), Tail: vector.IntN(int64(y))}
		state, images, err = driver.Interact(ctx, state, event)
		if err != nil {
			err = errors.Wrap(err, "interact")
			return
		}
		printImages(images)
	}
}

// parseClick parses a "x,y" click-coordinate line.
func parseClick(line string) (x, y int, err error) {
	line = strings.TrimSpace(line)
	parts := strings.SplitN(line, ",", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("expected \"x,y\", got %q", line)
	}
	x, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "parsing x in %q", line)
	}
	y, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "parsing y in %q", line)
	}
	return x, y, nil
}

// printImages renders the driver's image-list view as a terse per-image
// pixel count summary; a full pixel-grid renderer is out of scope (it
// belongs to the SDL/terminal preview layers this module stands in for).
func printImages(images vector.View) {
	lst, ok := images.(vector.List)
	if !ok {
		fmt.Printf("images: %v\n", images)
		return
	}
	fmt.Printf("%d image(s):\n", len(lst))
	for i, img := range lst {
		pixels, ok := img.(vector.List)
		if !ok {
			fmt.Printf("  [%d] %v\n", i, img)
			continue
		}
		fmt.Printf("  [%d] %d pixel(s)\n", i, len(pixels))
	}
}
