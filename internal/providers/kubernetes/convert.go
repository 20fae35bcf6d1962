package kubernetes

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/canopyhost/canopy/internal/core"
)

// defaultServicePort is used when a service resource declares no
// desired port; a corev1.Service requires at least one port entry.
const defaultServicePort int32 = 80

// coreNamespace maps a cluster namespace back to the domain
// convention, where the empty string denotes the default namespace.
func coreNamespace(namespace string) string {
	if namespace == metav1.NamespaceDefault {
		return ""
	}
	return namespace
}

func serviceToResource(svc *corev1.Service) *core.Resource {
	payload := &core.ServicePayload{}

	if svc.Spec.ClusterIP != "" && svc.Spec.ClusterIP != corev1.ClusterIPNone {
		payload.Status.EffectiveAddress = svc.Spec.ClusterIP
	}
	if len(svc.Spec.Ports) > 0 {
		port := svc.Spec.Ports[0].Port
		payload.Spec.Port = &port
		payload.Status.EffectivePort = port
	}

	return &core.Resource{
		Kind: core.KindService,
		Metadata: core.ObjectMeta{
			Name:              svc.Name,
			Namespace:         coreNamespace(svc.Namespace),
			UID:               string(svc.UID),
			CreationTimestamp: svc.CreationTimestamp.Time,
			Annotations:       svc.Annotations,
		},
		Service: payload,
	}
}

func resourceToService(r *core.Resource) *corev1.Service {
	port := defaultServicePort
	if r.Service.Spec.Port != nil {
		port = *r.Service.Spec.Port
	}

	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:        r.Metadata.Name,
			Namespace:   namespaceOrDefault(r.Metadata.Namespace),
			Annotations: r.Metadata.Annotations,
		},
		Spec: corev1.ServiceSpec{
			Ports: []corev1.ServicePort{{Port: port}},
		},
	}
}

func podToResource(pod *corev1.Pod) *core.Resource {
	payload := &core.ContainerPayload{
		Status: core.ContainerStatus{State: string(pod.Status.Phase)},
	}
	if len(pod.Spec.Containers) > 0 {
		payload.Spec.Image = pod.Spec.Containers[0].Image
		payload.Spec.Args = pod.Spec.Containers[0].Args
	}

	return &core.Resource{
		Kind: core.KindContainer,
		Metadata: core.ObjectMeta{
			Name:              pod.Name,
			Namespace:         coreNamespace(pod.Namespace),
			UID:               string(pod.UID),
			CreationTimestamp: pod.CreationTimestamp.Time,
			Annotations:       pod.Annotations,
		},
		Container: payload,
	}
}

func resourceToPod(r *core.Resource) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:        r.Metadata.Name,
			Namespace:   namespaceOrDefault(r.Metadata.Namespace),
			Annotations: r.Metadata.Annotations,
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{
				Name:  r.Metadata.Name,
				Image: r.Container.Spec.Image,
				Args:  r.Container.Spec.Args,
			}},
			RestartPolicy: corev1.RestartPolicyAlways,
		},
	}
}
