package tensor

import (
	"fmt"
)

// Conv2D performs a direct 2D convolution.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels] (bias may be nil)
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
func Conv2D(input, kernel, bias *Tensor, stride, padding int) (*Tensor, error) {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		return nil, fmt.Errorf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape))
	}
	if len(kernelShape) != 4 {
		return nil, fmt.Errorf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape))
	}
	if stride <= 0 || padding < 0 {
		return nil, fmt.Errorf("conv2d: invalid stride %d or padding %d", stride, padding)
	}

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	COut, CInK, KH, KW := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]

	if CIn != CInK {
		return nil, fmt.Errorf("conv2d: input channels %d != kernel channels %d", CIn, CInK)
	}
	if bias != nil && (len(bias.shape) != 1 || bias.shape[0] != COut) {
		return nil, fmt.Errorf("conv2d: bias shape %v does not match %d output channels", bias.shape, COut)
	}

	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		return nil, fmt.Errorf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (input %dx%d, kernel %dx%d)",
			HOut, WOut, H, W, KH, KW)
	}

	out := Zeros(Shape{N, COut, HOut, WOut}, promote(input.dtype, kernel.dtype))
	for n := 0; n < N; n++ {
		for co := 0; co < COut; co++ {
			var b float32
			if bias != nil {
				b = bias.data[co]
			}
			for oh := 0; oh < HOut; oh++ {
				for ow := 0; ow < WOut; ow++ {
					sum := b
					for ci := 0; ci < CIn; ci++ {
						for kh := 0; kh < KH; kh++ {
							ih := oh*stride + kh - padding
							if ih < 0 || ih >= H {
								continue
							}
							for kw := 0; kw < KW; kw++ {
								iw := ow*stride + kw - padding
								if iw < 0 || iw >= W {
									continue
								}
								sum += input.data[((n*CIn+ci)*H+ih)*W+iw] *
									kernel.data[((co*CIn+ci)*KH+kh)*KW+kw]
							}
						}
					}
					out.data[((n*COut+co)*HOut+oh)*WOut+ow] = sum
				}
			}
		}
	}
	return out, nil
}

// MaxPool2D takes the maximum over kernelSize x kernelSize windows.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, (height-kernelSize)/stride+1, (width-kernelSize)/stride+1]
func MaxPool2D(input *Tensor, kernelSize, stride int) (*Tensor, error) {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		return nil, fmt.Errorf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape))
	}
	if kernelSize <= 0 || stride <= 0 {
		return nil, fmt.Errorf("maxpool2d: invalid kernel size %d or stride %d", kernelSize, stride)
	}

	N, C, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	if kernelSize > H || kernelSize > W {
		return nil, fmt.Errorf("maxpool2d: kernel size %d too large for input %dx%d", kernelSize, H, W)
	}

	HOut := (H-kernelSize)/stride + 1
	WOut := (W-kernelSize)/stride + 1

	out := Zeros(Shape{N, C, HOut, WOut}, input.dtype)
	for nc := 0; nc < N*C; nc++ {
		plane := input.data[nc*H*W : (nc+1)*H*W]
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				best := plane[(oh*stride)*W+ow*stride]
				for kh := 0; kh < kernelSize; kh++ {
					for kw := 0; kw < kernelSize; kw++ {
						if v := plane[(oh*stride+kh)*W+ow*stride+kw]; v > best {
							best = v
						}
					}
				}
				out.data[(nc*HOut+oh)*WOut+ow] = best
			}
		}
	}
	return out, nil
}
