package sdl

import "github.com/veandco/go-sdl2/sdl"

const pixelScale = 8

// Window wraps the SDL window the live view draws into. Cells are single
// pixels on a streaming texture, scaled up by the renderer.
type Window struct {
	width  int32
	height int32

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte
}

func NewWindow(width, height int32) *Window {
	err := sdl.Init(sdl.INIT_VIDEO)
	check(err)

	window, err := sdl.CreateWindow(
		"Conway's Game of Life",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		width*pixelScale, height*pixelScale,
		sdl.WINDOW_SHOWN,
	)
	check(err)

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	check(err)
	err = renderer.SetLogicalSize(width, height)
	check(err)

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING, width, height)
	check(err)

	return &Window{
		width:    width,
		height:   height,
		window:   window,
		renderer: renderer,
		texture:  texture,
		pixels:   make([]byte, width*height*4),
	}
}

func (w *Window) Destroy() {
	_ = w.texture.Destroy()
	_ = w.renderer.Destroy()
	_ = w.window.Destroy()
	sdl.Quit()
}

// FlipPixel toggles the cell at (x, y) between live (white) and dead (black).
func (w *Window) FlipPixel(x, y int) {
	offset := (int32(y)*w.width + int32(x)) * 4
	for i := int32(0); i < 4; i++ {
		w.pixels[offset+i] = ^w.pixels[offset+i]
	}
}

func (w *Window) RenderFrame() {
	err := w.texture.Update(nil, w.pixels, int(w.width)*4)
	check(err)
	err = w.renderer.Copy(w.texture, nil, nil)
	check(err)
	w.renderer.Present()
}

func (w *Window) PollEvent() sdl.Event {
	return sdl.PollEvent()
}

func check(e error) {
	if e != nil {
		panic(e)
	}
}
