package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/google/go-cmp/cmp"
)

func TestLoadPLYASCII(t *testing.T) {
	mesh, err := LoadPLY("testdata/pyramid.ply")
	if err != nil {
		t.Fatalf("LoadPLY failed: %v", err)
	}

	wantVertices := []core.Vec3{
		{X: -1, Y: 0, Z: -1},
		{X: 1, Y: 0, Z: -1},
		{X: 1, Y: 0, Z: 1},
		{X: -1, Y: 0, Z: 1},
		{X: 0, Y: 2, Z: 0},
	}
	if diff := cmp.Diff(wantVertices, mesh.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}

	// The quad is split into a fan around its first vertex
	wantFaces := [][3]int{{3, 2, 1}, {3, 1, 0}, {0, 1, 4}}
	if diff := cmp.Diff(wantFaces, mesh.Faces); diff != "" {
		t.Errorf("faces mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPLYMissingFile(t *testing.T) {
	if _, err := LoadPLY("testdata/nonexistent.ply"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// binaryPLY encodes a single triangle with an extra vertex property and a face flag
func binaryPLY(t *testing.T, format string, order binary.ByteOrder) []byte {
	t.Helper()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ply\nformat %s 1.0\n", format)
	buf.WriteString("element vertex 3\nproperty float x\nproperty float y\nproperty float z\nproperty double confidence\n")
	buf.WriteString("element face 1\nproperty uchar flags\nproperty list uchar uint vertex_indices\nend_header\n")

	vertices := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0.5}}
	for _, v := range vertices {
		for _, c := range v {
			binary.Write(&buf, order, c)
		}
		binary.Write(&buf, order, float64(0.25))
	}
	buf.WriteByte(7)
	buf.WriteByte(3)
	for _, idx := range []uint32{0, 1, 2} {
		binary.Write(&buf, order, idx)
	}
	return buf.Bytes()
}

func TestReadPLYBinary(t *testing.T) {
	tests := []struct {
		format string
		order  binary.ByteOrder
	}{
		{"binary_little_endian", binary.LittleEndian},
		{"binary_big_endian", binary.BigEndian},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			mesh, err := ReadPLY(bytes.NewReader(binaryPLY(t, tt.format, tt.order)))
			if err != nil {
				t.Fatalf("ReadPLY failed: %v", err)
			}

			want := &Mesh{
				Vertices: []core.Vec3{{}, {X: 1}, {Y: 1, Z: 0.5}},
				Faces:    [][3]int{{0, 1, 2}},
			}
			if diff := cmp.Diff(want, mesh); diff != "" {
				t.Errorf("mesh mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadPLYMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing magic", "format ascii 1.0\nend_header\n"},
		{"unterminated header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\nend_header\n"},
		{"missing z", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nend_header\n0 0\n"},
		{"bad property type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n"},
		{"truncated data", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n1 1\n"},
		{"index out of range", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 5\n"},
		{"unsupported element", "ply\nformat ascii 1.0\nelement edge 2\nproperty int vertex1\nend_header\n"},
		{"negative face size", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n-3 0 1 2\n"},
		{"fractional face size", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n2.5 0 1 2\n"},
		{"huge face size", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n1e300 0 1 2\n"},
		{"negative binary face size", "ply\nformat binary_little_endian 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list int int vertex_indices\nend_header\n\xff\xff\xff\xff"},
		{"huge vertex count", "ply\nformat ascii 1.0\nelement vertex 999999999999999\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"huge binary vertex count", "ply\nformat binary_big_endian 1.0\nelement vertex 999999999999999\nproperty float x\nproperty float y\nproperty float z\nend_header\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPLY(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformedPLY) {
				t.Errorf("expected ErrMalformedPLY, got %v", err)
			}
		})
	}
}

func TestMeshFit(t *testing.T) {
	mesh, err := LoadPLY("testdata/pyramid.ply")
	if err != nil {
		t.Fatalf("LoadPLY failed: %v", err)
	}

	center := core.NewVec3(0.5, -1, 0)
	mesh.Vertices[4].Y = 4
	mesh.Fit(center, 1)

	bounds := mesh.Bounds()
	size := bounds.Size()
	if math.Abs(size.Y-1) > 1e-12 || math.Abs(size.X-0.5) > 1e-12 || math.Abs(size.Z-0.5) > 1e-12 {
		t.Errorf("expected size (0.5, 1, 0.5), got %v", size)
	}
	if got := bounds.Center(); got.Subtract(center).Length() > 1e-12 {
		t.Errorf("expected center %v, got %v", center, got)
	}
}

func TestMeshTriangles(t *testing.T) {
	mesh := &Mesh{
		Vertices: []core.Vec3{{}, {X: 1}, {Y: 1}, {X: 2}},
		// The second face is collinear
		Faces: [][3]int{{0, 1, 2}, {0, 1, 3}},
	}

	triangles := mesh.Triangles()
	if len(triangles) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(triangles))
	}
	if math.Abs(triangles[0].Area()-0.5) > 1e-12 {
		t.Errorf("expected area 0.5, got %f", triangles[0].Area())
	}
}
