package cmd

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

// tunnelOpts configures an SSH port forward to the records database,
// used to reach a remote environment's database from a local machine.
type tunnelOpts struct {
	user       string
	bastion    string
	sshPort    string
	dbHost     string
	dbPort     string
	localPort  string
	keyPath    string
}

var tunnel tunnelOpts

var tunnelCmd = &cobra.Command{
	Use:   "tunnel",
	Short: "Forward a local port to the records database over SSH",
	Run: func(cmd *cobra.Command, args []string) {
		setLogging(logLevel)

		if err := runTunnel(tunnel); err != nil {
			log.Fatal().Err(err).Msg("Tunnel failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(tunnelCmd)
	tunnelCmd.Flags().StringVar(&tunnel.user, "ssh-user", "ec2-user", "SSH user on the bastion")
	tunnelCmd.Flags().StringVar(&tunnel.bastion, "bastion", "", "bastion host to tunnel through")
	tunnelCmd.Flags().StringVar(&tunnel.sshPort, "ssh-port", "22", "SSH port on the bastion")
	tunnelCmd.Flags().StringVar(&tunnel.dbHost, "db-host", "", "database host reachable from the bastion")
	tunnelCmd.Flags().StringVar(&tunnel.dbPort, "db-port", "5432", "database port")
	tunnelCmd.Flags().StringVar(&tunnel.localPort, "local-port", "5432", "local port to listen on")
	tunnelCmd.Flags().StringVar(&tunnel.keyPath, "key", "", "path to the SSH private key")
}

func sshDial(opts tunnelOpts) (*ssh.Client, error) {
	key, err := os.ReadFile(opts.keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	cfg := &ssh.ClientConfig{
		User:            opts.user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}

	return ssh.Dial("tcp", net.JoinHostPort(opts.bastion, opts.sshPort), cfg)
}

func runTunnel(opts tunnelOpts) error {
	client, err := sshDial(opts)
	if err != nil {
		return err
	}
	defer client.Close()

	listener, err := net.Listen("tcp", "localhost:"+opts.localPort)
	if err != nil {
		return err
	}
	defer listener.Close()

	log.Info().Msgf("Tunnel listening on localhost:%s, forwarding to %s:%s",
		opts.localPort, opts.dbHost, opts.dbPort)

	for {
		local, err := listener.Accept()
		if err != nil {
			log.Error().Err(err).Msg("Failed to accept connection")
			continue
		}

		remote, err := client.Dial("tcp", net.JoinHostPort(opts.dbHost, opts.dbPort))
		if err != nil {
			log.Error().Err(err).Msg("Failed to reach database through bastion")
			local.Close()
			continue
		}

		go proxy(local, remote)
	}
}

func proxy(local, remote net.Conn) {
	defer local.Close()
	defer remote.Close()

	go io.Copy(remote, local)
	io.Copy(local, remote)
}
