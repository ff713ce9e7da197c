package kinect

import "gocv.io/x/gocv"

// Depth samples outside this range are unreliable on the sensor and get
// zeroed before blurring.
const (
	minReliableDepth = 500  // mm
	maxReliableDepth = 6000 // mm
)

// FilterDepth zeroes depth samples outside the sensor's reliable range and
// applies a 3x3 median blur to suppress speckle noise. The input image is
// not modified.
func FilterDepth(depth Image16) Image16 {
	mat := gocv.NewMatWithSize(depth.Height, depth.Width, gocv.MatTypeCV16UC1)
	defer mat.Close()

	pix, err := mat.DataPtrUint16()
	if err != nil {
		// NewMatWithSize always yields a continuous mat.
		panic(err)
	}
	for i, v := range depth.Pix {
		if v < minReliableDepth || v > maxReliableDepth {
			pix[i] = 0
		} else {
			pix[i] = v
		}
	}

	gocv.MedianBlur(mat, &mat, 3)

	out := Image16{
		Width:  depth.Width,
		Height: depth.Height,
		Pix:    make([]uint16, len(depth.Pix)),
	}
	blurred, err := mat.DataPtrUint16()
	if err != nil {
		panic(err)
	}
	copy(out.Pix, blurred)
	return out
}
