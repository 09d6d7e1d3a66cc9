package service

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultTolerance 未指定容差时使用的默认值
const DefaultTolerance = 40

var (
	ErrInvalidBuffer    = errors.New("pixel buffer length does not match width*height*4")
	ErrInvalidTolerance = errors.New("tolerance must not be negative")
)

// RemoveBackground 以左上角像素为背景色，把 RGB 各通道差值都不超过 tolerance 的像素的 alpha 置 0。
// pix 为逐行排列的 RGBA 字节，原地修改；校验失败时不会改动任何像素。
func RemoveBackground(pix []uint8, width, height, tolerance int) error {
	if err := checkBuffer(pix, width, height, tolerance); err != nil {
		return err
	}
	clearMatching(pix, pix[0], pix[1], pix[2], tolerance)
	return nil
}

// RemoveBackgroundParallel 与 RemoveBackground 结果一致，按连续像素区间分片并发处理。
// workers <= 0 时使用 GOMAXPROCS。
func RemoveBackgroundParallel(pix []uint8, width, height, tolerance, workers int) error {
	if err := checkBuffer(pix, width, height, tolerance); err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	pixels := width * height
	workers = min(workers, pixels)
	if workers <= 1 {
		clearMatching(pix, pix[0], pix[1], pix[2], tolerance)
		return nil
	}

	// 背景色必须在分片前取出，否则第一片可能先改写 (0,0)
	r, g, b := pix[0], pix[1], pix[2]
	chunk := (pixels + workers - 1) / workers

	var eg errgroup.Group
	for start := 0; start < pixels; start += chunk {
		end := min(start+chunk, pixels)
		part := pix[start*4 : end*4]
		eg.Go(func() error {
			clearMatching(part, r, g, b, tolerance)
			return nil
		})
	}
	return eg.Wait()
}

func checkBuffer(pix []uint8, width, height, tolerance int) error {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrInvalidBuffer, len(pix), width, height)
	}
	if tolerance < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTolerance, tolerance)
	}
	return nil
}

func clearMatching(pix []uint8, r, g, b uint8, tolerance int) {
	for i := 0; i+3 < len(pix); i += 4 {
		if absDiff(pix[i], r) <= tolerance &&
			absDiff(pix[i+1], g) <= tolerance &&
			absDiff(pix[i+2], b) <= tolerance {
			pix[i+3] = 0
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
