package kinect

import (
	"fmt"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/plantlab/turntable-rig/pkg/npy"
)

// Raw depth is scaled by this assumed maximum when rendering the colormap
// JPEG for human inspection.
const depthDisplayMax = 8000 // mm

// ArtifactSet names the files written for one capture. All files in a set
// share the same label and count.
type ArtifactSet struct {
	RGBJPEG  string
	RGBRaw   string
	DepthRaw string
	// DepthJPEG is the raw depth rendered through a jet colormap.
	DepthJPEG string
}

// Save persists the four artifacts for one frame pair under dir, named
// {label}_{rgb|depth}_plant_{count}.{jpg|npy}. The raw .npy artifacts are
// lossless; the JPEGs are for inspection only. There is no rollback: the
// first failed write aborts the set and files already written stay on disk.
func Save(pair *FramePair, label string, count int, dir string) (*ArtifactSet, error) {
	set := &ArtifactSet{
		RGBJPEG:   filepath.Join(dir, fmt.Sprintf("%s_rgb_plant_%d.jpg", label, count)),
		RGBRaw:    filepath.Join(dir, fmt.Sprintf("%s_rgb_plant_%d.npy", label, count)),
		DepthRaw:  filepath.Join(dir, fmt.Sprintf("%s_depth_plant_%d.npy", label, count)),
		DepthJPEG: filepath.Join(dir, fmt.Sprintf("%s_depth_plant_%d.jpg", label, count)),
	}

	if err := writeJPEG(set.RGBJPEG, pair.RGB); err != nil {
		return nil, err
	}
	if err := npy.WriteUint8(set.RGBRaw, pair.RGB.Pix, pair.RGB.Height, pair.RGB.Width, 3); err != nil {
		return nil, fmt.Errorf("writing %s: %w", set.RGBRaw, err)
	}
	if err := npy.WriteUint16(set.DepthRaw, pair.Depth.Pix, pair.Depth.Height, pair.Depth.Width); err != nil {
		return nil, fmt.Errorf("writing %s: %w", set.DepthRaw, err)
	}
	if err := writeDepthJPEG(set.DepthJPEG, pair.Depth); err != nil {
		return nil, err
	}
	return set, nil
}

// SaveFiltered writes the cleaned-up depth as an extra artifact pair named
// {label}_filtered_plant_{count}.{npy,jpg}.
func SaveFiltered(pair *FramePair, label string, count int, dir string) error {
	filtered := FilterDepth(pair.Depth)

	rawPath := filepath.Join(dir, fmt.Sprintf("%s_filtered_plant_%d.npy", label, count))
	if err := npy.WriteUint16(rawPath, filtered.Pix, filtered.Height, filtered.Width); err != nil {
		return fmt.Errorf("writing %s: %w", rawPath, err)
	}
	jpgPath := filepath.Join(dir, fmt.Sprintf("%s_filtered_plant_%d.jpg", label, count))
	return writeDepthJPEG(jpgPath, filtered)
}

func writeJPEG(path string, img Image8) error {
	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer mat.Close()
	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("writing %s failed", path)
	}
	return nil
}

// writeDepthJPEG renders 16-bit depth as a jet-colormapped JPEG, linearly
// scaling 0-8000mm onto 8 bits.
func writeDepthJPEG(path string, depth Image16) error {
	gray := make([]uint8, len(depth.Pix))
	for i, v := range depth.Pix {
		s := uint32(v) * 255 / depthDisplayMax
		if s > 255 {
			s = 255
		}
		gray[i] = uint8(s)
	}

	grayMat, err := gocv.NewMatFromBytes(depth.Height, depth.Width, gocv.MatTypeCV8UC1, gray)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer grayMat.Close()

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(grayMat, &colored, gocv.ColormapJet)

	if ok := gocv.IMWrite(path, colored); !ok {
		return fmt.Errorf("writing %s failed", path)
	}
	return nil
}
