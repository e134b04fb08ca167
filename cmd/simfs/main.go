package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pedromagedanz/simfs/disks"
	"github.com/pedromagedanz/simfs/shell"
	"github.com/pedromagedanz/simfs/sim"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "simfs",
		Usage: "Simulate a small Unix-like filesystem in memory",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "size",
				Usage: "disk size in bytes (512-33554432)",
			},
			&cli.StringFlag{
				Name:  "disk",
				Usage: "named disk profile; see the `profiles` command",
			},
			&cli.StringFlag{
				Name:  "admin-password",
				Usage: "administrator password",
			},
		},
		Action: runSession,
		Commands: []*cli.Command{
			{
				Name:   "profiles",
				Usage:  "List the named disk profiles",
				Action: listProfiles,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func listProfiles(context *cli.Context) error {
	for _, profile := range disks.Profiles() {
		fmt.Printf("%-10s %10d  %s\n", profile.Slug, profile.TotalBytes, profile.Name)
	}
	return nil
}

func runSession(context *cli.Context) error {
	reader := bufio.NewReader(os.Stdin)

	totalBytes, err := chooseDiskSize(context, reader)
	if err != nil {
		return err
	}

	adminPassword := context.String("admin-password")
	if adminPassword == "" {
		adminPassword = promptWithDefault(
			reader, fmt.Sprintf("admin password [%s]", sim.DefaultAdminPassword),
			sim.DefaultAdminPassword)
	}

	fsys, err := sim.CreateDisk(totalBytes, adminPassword)
	if err != nil {
		return err
	}
	fmt.Printf("created a %d-byte disk (%d blocks)\n", totalBytes, fsys.Blocks.TotalBlocks())

	prompter := shell.PromptFunc(func(label string) (string, error) {
		fmt.Printf("%s: ", label)
		return readLine(reader)
	})

	for {
		fmt.Printf("%s:%s$ ", fsys.ActiveUser().Username, fsys.CurrentDirectory().Name)

		line, err := readLine(reader)
		if err != nil {
			// Input stream is gone; treat it like a shutdown.
			fmt.Println()
			return nil
		}

		result := shell.Dispatch(fsys, shell.Parse(line), prompter)
		switch {
		case result.Err != nil:
			fmt.Printf("error: %s\n", result.Err.Error())
		case result.Output != "":
			fmt.Println(result.Output)
		}

		if result.Quit {
			return nil
		}
	}
}

func chooseDiskSize(context *cli.Context, reader *bufio.Reader) (int64, error) {
	if slug := context.String("disk"); slug != "" {
		profile, err := disks.BySlug(slug)
		if err != nil {
			return 0, err
		}
		return profile.TotalBytes, nil
	}
	if context.IsSet("size") {
		return context.Int64("size"), nil
	}

	answer := promptWithDefault(
		reader, fmt.Sprintf("disk size in bytes [%d]", sim.DefaultDiskBytes), "")
	if answer == "" {
		return sim.DefaultDiskBytes, nil
	}

	totalBytes, err := strconv.ParseInt(answer, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid disk size", answer)
	}
	return totalBytes, nil
}

func promptWithDefault(reader *bufio.Reader, label, fallback string) string {
	fmt.Printf("%s: ", label)
	answer, err := readLine(reader)
	if err != nil || answer == "" {
		return fallback
	}
	return answer
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
