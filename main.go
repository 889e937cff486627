package main

import "github.com/CodingGarden/yt-caption-downloader/cmd"

func main() {
	cmd.Execute()
}
