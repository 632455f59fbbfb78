package classifier

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/crimson-sun/taxon/internal/engine/vectorizer"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXOptions configures an ONNX classifier session.
type ONNXOptions struct {
	// LibraryPath is the ONNX Runtime shared library. Defaults to
	// libonnxruntime.so next to the model file.
	LibraryPath string
	// InputName defaults to the model's first input.
	InputName string
	// OutputName defaults to "output_label", then "label", then the first
	// output.
	OutputName string
}

// ONNX runs an exported classifier whose float input has shape [N, D] and
// whose int64 label output has shape [N].
type ONNX struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	dim        int64
}

// LoadONNX creates an inference session for the classifier at modelPath.
func LoadONNX(modelPath string, opts ONNXOptions) (*ONNX, error) {
	libPath := opts.LibraryPath
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	input, output, dim, err := resolveIO(inputs, outputs, opts)
	if err != nil {
		return nil, err
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer sessOpts.Destroy()
	sessOpts.SetIntraOpNumThreads(1)
	sessOpts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{input}, []string{output}, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &ONNX{session: session, inputName: input, outputName: output, dim: dim}, nil
}

// resolveIO picks the input and label output tensors and validates their
// shapes and element types.
func resolveIO(inputs, outputs []ort.InputOutputInfo, opts ONNXOptions) (string, string, int64, error) {
	if len(inputs) == 0 {
		return "", "", 0, fmt.Errorf("onnx: model has no inputs")
	}
	if len(outputs) == 0 {
		return "", "", 0, fmt.Errorf("onnx: model has no outputs")
	}

	in, ok := findIO(inputs, opts.InputName)
	if !ok {
		return "", "", 0, fmt.Errorf("onnx: model missing input %q", opts.InputName)
	}
	if in.DataType != ort.TensorElementDataTypeFloat {
		return "", "", 0, fmt.Errorf("onnx: input %q must be float32, got %v", in.Name, in.DataType)
	}
	if len(in.Dimensions) != 2 || in.Dimensions[1] <= 0 {
		return "", "", 0, fmt.Errorf("onnx: input %q must have shape [N, D], got %v", in.Name, in.Dimensions)
	}

	var out ort.InputOutputInfo
	if opts.OutputName != "" {
		out, ok = findIO(outputs, opts.OutputName)
		if !ok {
			return "", "", 0, fmt.Errorf("onnx: model missing output %q", opts.OutputName)
		}
	} else if out, ok = findIO(outputs, "output_label"); !ok {
		if out, ok = findIO(outputs, "label"); !ok {
			out = outputs[0]
		}
	}
	if out.DataType != ort.TensorElementDataTypeInt64 {
		return "", "", 0, fmt.Errorf("onnx: output %q must be int64 labels, got %v", out.Name, out.DataType)
	}

	return in.Name, out.Name, in.Dimensions[1], nil
}

// findIO returns the named tensor info, or the first one when name is empty.
func findIO(infos []ort.InputOutputInfo, name string) (ort.InputOutputInfo, bool) {
	if name == "" {
		return infos[0], true
	}
	for _, info := range infos {
		if info.Name == name {
			return info, true
		}
	}
	return ort.InputOutputInfo{}, false
}

// Predict runs one inference call on a single dense row.
func (o *ONNX) Predict(vec vectorizer.Vector) (int64, error) {
	if int64(vec.Dim) != o.dim {
		return 0, fmt.Errorf("onnx: vector dim %d != model dim %d", vec.Dim, o.dim)
	}

	tIn, err := ort.NewTensor(ort.NewShape(1, o.dim), vec.Dense())
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create %s tensor: %w", o.inputName, err)
	}
	defer tIn.Destroy()

	tOut, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := o.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return 0, fmt.Errorf("onnx: inference failed: %w", err)
	}
	return tOut.GetData()[0], nil
}

// Dim returns the feature dimensionality of the model input.
func (o *ONNX) Dim() int {
	return int(o.dim)
}

// Close releases the ONNX session resources.
func (o *ONNX) Close() error {
	return o.session.Destroy()
}
