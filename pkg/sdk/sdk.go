// Package sdk is the top-level entry point composing a Stack Writer and
// Stack Reader around a configured ObjectStore and a connection to the
// Allocation Service, wiring a single store set once for every caller
// to share.
package sdk

import (
	"github.com/marmos91/stackhaus/internal/metrics"
	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/stackreader"
	"github.com/marmos91/stackhaus/internal/stackwriter"
	"github.com/marmos91/stackhaus/pkg/allocclient"
)

// Client composes the stack storage engine's writer and reader against
// one object store and one allocation-service connection. It is the
// package a preload worker or any other out-of-core consumer should
// depend on instead of reaching into internal/.
type Client struct {
	store objectstore.ObjectStore
	alloc *allocclient.Client
	*stackreader.Reader
}

// Options configures a Client.
type Options struct {
	// Prefix is the caller-supplied key prefix (must end in "/") the
	// reader uses. NewWriter takes its own prefix argument and does not
	// read this field.
	Prefix string

	// MaxStackBytes is not read by New or NewWriter; NewWriter takes the
	// rollover ceiling as its own argument (zero uses
	// stackwriter.DefaultMaxStackBytes).
	MaxStackBytes uint64
}

// New builds a Client around store and a connection to the allocation
// service at controllerURL.
func New(store objectstore.ObjectStore, controllerURL string, opts Options) *Client {
	alloc := allocclient.New(controllerURL)
	reader := stackreader.New(store, opts.Prefix)
	reader.SetMetrics(metrics.NewReaderMetrics())
	return &Client{
		store:  store,
		alloc:  alloc,
		Reader: reader,
	}
}

// NewWriter opens a fresh Stack Writer sharing this client's object
// store, allocation-service connection, and prefix. Writers are
// single-owner (see stackwriter.Writer's contract) so each caller that
// needs to append records gets its own.
func (c *Client) NewWriter(maxStackBytes uint64, prefix string) *stackwriter.Writer {
	if maxStackBytes == 0 {
		maxStackBytes = stackwriter.DefaultMaxStackBytes
	}
	return stackwriter.New(c.store, c.alloc, stackwriter.Options{
		MaxStackBytes: maxStackBytes,
		Prefix:        prefix,
		Metrics:       metrics.NewWriterMetrics(),
	})
}

// AllocClient exposes the underlying allocation-service client for
// callers that need the raw RPC surface (bind/preload CLI commands,
// the preload worker).
func (c *Client) AllocClient() *allocclient.Client { return c.alloc }

// ObjectStore exposes the underlying object store.
func (c *Client) ObjectStore() objectstore.ObjectStore { return c.store }
