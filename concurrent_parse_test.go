package gdata_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jacoelho/gdata"
)

func TestParseFeedConcurrent(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:openSearch="http://a9.com/-/spec/opensearch/1.1/">
  <openSearch:totalResults>3</openSearch:totalResults>
  <entry><id>urn:1</id></entry>
  <entry><id>urn:2</id></entry>
  <entry><id>urn:3</id></entry>
</feed>`

	opts := gdata.NewParseOptions().WithProfile(gdata.NewProfile())

	const goroutines = 8
	const iterations = 25

	errCh := make(chan error, goroutines*iterations)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				feed, err := gdata.ParseFeed(context.Background(), strings.NewReader(docXML), opts)
				if err != nil {
					errCh <- err
					return
				}
				var buf bytes.Buffer
				if err := gdata.Generate(&buf, feed, gdata.NewGenerateOptions().WithProfile(opts.Profile())); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Fatalf("concurrent ParseFeed error: %v", err)
	}
}
