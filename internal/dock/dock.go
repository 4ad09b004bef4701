// Package dock starts throwaway service containers for integration tests.
package dock

import (
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	docker "github.com/fsouza/go-dockerclient"
)

var (
	Address = `unix:///var/run/docker.sock`
)

type Config struct {
	docker.Config
}

type fullConfig struct {
	docker.Config
	docker.HostConfig
}

func client(t testing.TB) *docker.Client {
	var (
		cli *docker.Client
		err error
	)
	if os.Getenv("DOCKER_HOST") != "" {
		cli, err = docker.NewClientFromEnv()
	} else {
		cli, err = docker.NewClient(Address)
	}
	if err != nil {
		t.Skip("docker is not available: ", err)
	}
	if err = cli.Ping(); err != nil {
		t.Skip("docker is not available: ", err)
	}
	return cli
}

func run(t testing.TB, conf fullConfig) (closer func()) {
	if testing.Short() {
		t.SkipNow()
	}
	cli := client(t)

	// pull only when the image is missing locally
	if _, err := cli.InspectImage(conf.Image); err != nil {
		repo, tag := docker.ParseRepositoryTag(conf.Image)
		if tag == "" {
			tag = "latest"
		}
		if err := cli.PullImage(docker.PullImageOptions{
			Repository: repo,
			Tag:        tag,
		}, docker.AuthConfiguration{}); err != nil {
			t.Skip(err)
		}
	}

	cont, err := cli.CreateContainer(docker.CreateContainerOptions{
		Config:     &conf.Config,
		HostConfig: &conf.HostConfig,
	})
	if err != nil {
		t.Skip(err)
	}

	closer = func() {
		cli.RemoveContainer(docker.RemoveContainerOptions{
			ID:    cont.ID,
			Force: true,
		})
	}

	if err := cli.StartContainer(cont.ID, nil); err != nil {
		closer()
		t.Skip(err)
	}
	return closer
}

func randPort() int {
	const (
		min = 10000
		max = 30000
	)
	for {
		port := min + rand.Intn(max-min)
		c, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", localhost, port), time.Second)
		if c != nil {
			c.Close()
		}
		if err != nil {
			return port
		}
	}
}

const localhost = "127.0.0.1"

// RunAndWait starts a container and waits until check reports that the
// service on port is ready. The port is published on a random local port, so
// the returned address works with native and VM-hosted daemons alike. The
// test is skipped when no docker daemon can be reached.
func RunAndWait(t testing.TB, conf Config, port string, check func(string) bool) (addr string, closer func()) {
	fconf := fullConfig{Config: conf.Config}
	lport := strconv.Itoa(randPort())
	fconf.ExposedPorts = map[docker.Port]struct{}{
		docker.Port(port + "/tcp"): {},
	}
	fconf.PortBindings = map[docker.Port][]docker.PortBinding{
		docker.Port(port + "/tcp"): {{
			HostIP:   localhost,
			HostPort: lport,
		}},
	}
	closer = run(t, fconf)
	addr = net.JoinHostPort(localhost, lport)
	if check == nil {
		check = waitPort
	}
	ok := false
	for i := 0; i < 10 && !ok; i++ {
		ok = check(addr)
		if !ok {
			time.Sleep(time.Second * 2)
		}
	}
	if !ok {
		closer()
		t.Fatal("Container check fails.")
	}
	return addr, closer
}

const wait = time.Second * 5

func waitPort(addr string) bool {
	start := time.Now()
	c, err := net.DialTimeout("tcp", addr, wait)
	if err == nil {
		c.Close()
	} else if dt := time.Since(start); dt < wait {
		time.Sleep(wait - dt)
	}
	return err == nil
}
