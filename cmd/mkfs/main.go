package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/kesheh/sectorfs"
	"github.com/kesheh/sectorfs/blockdev"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	app := cli.App{
		Name:        "mkfs",
		Usage:       "format and inspect sectorfs disk images",
		Description: "a command line front end for the sectorfs volume",
		Commands: []*cli.Command{
			{
				Name:        "format",
				Usage:       "create a new disk image and format it",
				Description: "creates DISK if it doesn't exist and writes a fresh superblock and inode table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "disk",
						Usage:    "path to the disk image file",
						Value:    cfg.Disk,
						Required: cfg.Disk == "",
					},
					&cli.Uint64Flag{
						Name:  "sectors",
						Usage: "total number of sectors in the image",
						Value: 65536,
					},
					&cli.IntFlag{
						Name:  "inodes",
						Usage: "number of inodes to provision",
						Value: cfg.InodeCount,
					},
				},
				Action: func(ctx *cli.Context) error {
					return runFormat(
						logger,
						ctx.String("disk"),
						uint32(ctx.Uint64("sectors")),
						ctx.Int("inodes"),
					)
				},
			},
			{
				Name:        "inspect",
				Usage:       "mount a disk image read-only and print its inode table",
				Description: "dumps every valid inode's size and block chain; never writes to the disk",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "disk",
						Usage:    "path to the disk image file",
						Value:    cfg.Disk,
						Required: cfg.Disk == "",
					},
				},
				Action: func(ctx *cli.Context) error {
					return runInspect(logger, ctx.String("disk"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runFormat(logger *logrus.Logger, disk string, sectors uint32, inodes int) error {
	if err := blockdev.CreateFile(disk, sectors); err != nil {
		return fmt.Errorf("creating disk image: %w", err)
	}

	dev, err := blockdev.OpenFile(disk)
	if err != nil {
		return fmt.Errorf("opening disk image: %w", err)
	}

	vol := sectorfs.New(logger)
	if err := vol.Format(dev, inodes); err != nil {
		return fmt.Errorf("formatting disk image: %w", err)
	}
	return nil
}

func runInspect(logger *logrus.Logger, disk string) error {
	dev, err := blockdev.OpenFile(disk)
	if err != nil {
		return fmt.Errorf("opening disk image: %w", err)
	}

	vol := sectorfs.New(logger)
	if err := vol.Mount(dev, disk); err != nil {
		return fmt.Errorf("mounting disk image: %w", err)
	}
	defer vol.Unmount()

	return vol.Debug(os.Stdout)
}
