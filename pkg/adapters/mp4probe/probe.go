// Package mp4probe inspects the video track of MP4 files.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when a file has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Info describes the first video track of an MP4 file.
type Info struct {
	Codec      string // "h264", "hevc", "av1" or the sample entry type
	Width      int
	Height     int
	Timescale  uint32
	Samples    int
	Duration   time.Duration // Zero when the track header carries no duration
	Fragmented bool
}

// ProbeFile inspects the MP4 file at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe inspects MP4 data from r.
func Probe(r io.ReadSeeker) (Info, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := file.Moov
	if file.IsFragmented() && file.Init != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		return Info{}, ErrNoVideoTrack
	}

	for _, trak := range moov.Traks {
		info, ok := probeTrack(trak)
		if !ok {
			continue
		}
		if file.IsFragmented() {
			info.Fragmented = true
			info.Samples = fragmentSamples(file, trak.Tkhd.TrackID)
		}
		return info, nil
	}
	return Info{}, ErrNoVideoTrack
}

func probeTrack(trak *mp4.TrakBox) (Info, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return Info{}, false
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return Info{}, false
	}

	var info Info
	if mdhd := trak.Mdia.Mdhd; mdhd != nil {
		info.Timescale = mdhd.Timescale
		if mdhd.Timescale > 0 {
			info.Duration = time.Duration(mdhd.Duration) * time.Second / time.Duration(mdhd.Timescale)
		}
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		info.Codec = codecName(child.Type())
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		break
	}

	if stsz := trak.Mdia.Minf.Stbl.Stsz; stsz != nil {
		info.Samples = int(stsz.SampleNumber)
	}
	return info, true
}

func fragmentSamples(file *mp4.File, trackID uint32) int {
	n := 0
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil || traf.Tfhd.TrackID != trackID {
					continue
				}
				for _, trun := range traf.Truns {
					n += int(trun.SampleCount())
				}
			}
		}
	}
	return n
}

func codecName(sampleEntry string) string {
	switch sampleEntry {
	case "avc1", "avc3":
		return "h264"
	case "hvc1", "hev1":
		return "hevc"
	case "av01":
		return "av1"
	default:
		return sampleEntry
	}
}
