package command

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/rdfstore/clog"
	"github.com/cayleygraph/rdfstore/internal/config"
	rdfhttp "github.com/cayleygraph/rdfstore/server/http"
	"github.com/cayleygraph/rdfstore/storage"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"http"},
		Short:   "Serve stored resources over HTTP on the given host and port.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.FromViper(viper.GetViper())
			printBackendInfo(c)
			b, err := c.OpenBackend()
			if err != nil {
				return err
			}
			if cl, ok := b.(storage.Closer); ok {
				defer cl.Close()
			}
			return serve(cmd.Context(), b, c)
		},
	}
	f := cmd.Flags()
	f.String("host", "127.0.0.1:64280", "host:port to listen on")
	f.String("base_url", "", "public URL of the files root, used to resolve relative references")
	f.Bool("read_only", false, "disable writes over HTTP")
	f.DurationP("timeout", "t", 30*time.Second, "elapsed time until an individual request times out")
	bindFlags(f, map[string]string{
		"host":      config.KeyHost,
		"base_url":  config.KeyBaseURL,
		"read_only": config.KeyReadOnly,
		"timeout":   config.KeyTimeout,
	})
	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, b storage.Backend, c config.Config) error {
	h := rdfhttp.New(b, rdfhttp.Options{
		BaseURL:  c.BaseURL,
		ReadOnly: c.ReadOnly,
		Timeout:  c.Timeout,
	}, rdfhttp.LogRequest, rdfhttp.CORS)
	srv := &http.Server{Addr: c.Host, Handler: h}

	ln, err := net.Listen("tcp", c.Host)
	if err != nil {
		return err
	}
	phost := c.Host
	if host, port, err := net.SplitHostPort(c.Host); err == nil && host == "" {
		phost = net.JoinHostPort("localhost", port)
	}
	clog.Infof("listening on %s, files at http://%s/files/", c.Host, phost)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	select {
	case err = <-errc:
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = srv.Shutdown(sctx)
		<-errc
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}
